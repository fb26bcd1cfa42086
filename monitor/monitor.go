package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msuddaby/DownDetector/logging"
)

const (
	// ErrorTitle is the title of alerts raised when a target cannot be evaluated.
	ErrorTitle = "Website Monitor Error"

	maxDrainSize = 64 * 1024
)

// Alerter delivers a notification. Implementations must not block the
// loop on delivery failures.
type Alerter interface {
	Notify(ctx context.Context, title, message string)
}

// CheckResult is the outcome of one GET against one target.
type CheckResult struct {
	URL        string
	Up         bool
	StatusCode int
	Err        error
	Latency    time.Duration
	CheckedAt  time.Time
}

// Monitor checks every target in order, then sleeps for Interval.
type Monitor struct {
	Targets  []string
	Interval time.Duration
	Client   *http.Client
	Alerter  Alerter
	Logger   *logging.Logger

	// Sleep pauses between cycles. Defaults to the package Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run cycles until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	sleep := m.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for {
		m.RunCycle(ctx)
		if err := sleep(ctx, m.Interval); err != nil {
			return err
		}
	}
}

// RunCycle evaluates each target sequentially, in list order, alerting
// inline after each failure.
func (m *Monitor) RunCycle(ctx context.Context) []CheckResult {
	logger := m.logger()
	logger.InfoLog.Printf("Starting health check cycle %s", uuid.NewString())

	results := make([]CheckResult, 0, len(m.Targets))
	for _, target := range m.Targets {
		if ctx.Err() != nil {
			break
		}

		result, err := m.Check(ctx, target)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			logger.ErrorLog.Printf("Error during website check: %v", err)
			m.alert(ctx, ErrorTitle, fmt.Sprintf("Error checking %s: %v", target, err))
			continue
		}
		results = append(results, result)

		if result.Up {
			logger.InfoLog.Printf("%s: %s - Status: %d, Latency: %v", logger.Status(true), result.URL, result.StatusCode, result.Latency)
			continue
		}

		if result.Err != nil {
			logger.WarnLog.Printf("%s: %s - Error: %v", logger.Status(false), result.URL, result.Err)
		} else {
			logger.WarnLog.Printf("%s: %s - Status: %d", logger.Status(false), result.URL, result.StatusCode)
		}
		logger.WarnLog.Printf("ALERT: Website %s is DOWN!", result.URL)
		m.alert(ctx, DownTitle(result.URL), fmt.Sprintf("The website check failed at %s", result.CheckedAt.Format(time.RFC1123)))
	}
	return results
}

// DownTitle is the alert title for a target classified down.
func DownTitle(target string) string {
	return fmt.Sprintf("Website %s is DOWN", target)
}

// Check performs a single GET against target. Non-2xx statuses and
// transport failures yield a down result with a nil error; the error is
// reserved for targets that could not be evaluated at all.
func (m *Monitor) Check(ctx context.Context, target string) (result CheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = CheckResult{}
			err = fmt.Errorf("panic while checking %s: %v", target, r)
		}
	}()

	if err := validateTarget(target); err != nil {
		return CheckResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{}, fmt.Errorf("error creating request for %s: %w", target, err)
	}

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	startTime := m.now()
	resp, err := client.Do(req)
	latency := m.now().Sub(startTime)

	result = CheckResult{
		URL:       target,
		Latency:   latency,
		CheckedAt: startTime,
	}
	if err != nil {
		result.Err = err
		return result, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))

	result.StatusCode = resp.StatusCode
	result.Up = resp.StatusCode >= 200 && resp.StatusCode < 300
	return result, nil
}

func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %w", target, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("invalid URL '%s': unsupported scheme %q", target, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL '%s': missing host", target)
	}
	return nil
}

func (m *Monitor) alert(ctx context.Context, title, message string) {
	if m.Alerter == nil {
		return
	}
	m.Alerter.Notify(ctx, title, message)
}

func (m *Monitor) logger() *logging.Logger {
	if m.Logger == nil {
		return logging.Discard()
	}
	return m.Logger
}

func (m *Monitor) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsShutdown reports whether err is the result of the run being stopped.
func IsShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}
