package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultSettingsFile   = "appsettings.json"
	DefaultCheckInterval  = 5 * time.Minute
	DefaultRequestTimeout = 30 * time.Second
)

// Config is the resolved, read-only configuration of a monitor run.
type Config struct {
	PushoverUserKey  string
	PushoverAppToken string
	URLs             []string
	CheckInterval    time.Duration
	RequestTimeout   time.Duration
}

// Options tells Load where the optional settings and secrets files live.
type Options struct {
	SettingsPath string
	SecretsPath  string
}

// setting pairs an environment variable with its file key.
type setting struct {
	env string
	key string
}

var (
	userKey        = setting{env: "PushoverUserKey", key: "Pushover:UserKey"}
	appToken       = setting{env: "PushoverAppToken", key: "Pushover:AppToken"}
	websiteURLs    = setting{env: "WebsiteUrls", key: "Website:Urls"}
	checkInterval  = setting{env: "CheckInterval", key: "Website:CheckInterval"}
	requestTimeout = setting{env: "RequestTimeout", key: "Website:RequestTimeout"}
)

// DefaultSecretsPath returns the per-user secrets file location.
func DefaultSecretsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "downdetector", "secrets.json")
}

// Load resolves the configuration. Environment variables win over the
// secrets file, which wins over the settings file.
func Load(opts Options) (*Config, error) {
	settings, err := readSource(opts.SettingsPath)
	if err != nil {
		return nil, err
	}
	secrets, err := readSource(opts.SecretsPath)
	if err != nil {
		return nil, err
	}
	files := []source{secrets, settings}

	cfg := &Config{
		PushoverUserKey:  lookupString(userKey, files),
		PushoverAppToken: lookupString(appToken, files),
		URLs:             lookupURLs(files),
	}

	var errs []error
	if cfg.PushoverUserKey == "" {
		errs = append(errs, missing(userKey))
	}
	if cfg.PushoverAppToken == "" {
		errs = append(errs, missing(appToken))
	}
	if len(cfg.URLs) == 0 {
		errs = append(errs, missing(websiteURLs))
	}

	minutes, err := lookupInt(checkInterval, files, int(DefaultCheckInterval/time.Minute))
	switch {
	case err != nil:
		errs = append(errs, err)
	case minutes <= 0:
		errs = append(errs, fmt.Errorf("%s must be a positive number of minutes, got %d", checkInterval.env, minutes))
	default:
		cfg.CheckInterval = time.Duration(minutes) * time.Minute
	}

	seconds, err := lookupInt(requestTimeout, files, int(DefaultRequestTimeout/time.Second))
	switch {
	case err != nil:
		errs = append(errs, err)
	case seconds < 0:
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", requestTimeout.env, seconds))
	default:
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func missing(s setting) error {
	return fmt.Errorf("missing %s (environment variable %s or key %s)", s.key, s.env, s.key)
}

func lookupEnv(s setting) (string, bool) {
	v, ok := os.LookupEnv(s.env)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func lookupString(s setting, files []source) string {
	if v, ok := lookupEnv(s); ok {
		return strings.TrimSpace(v)
	}
	for _, src := range files {
		if v, ok := src.value(s.key); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// lookupInt returns the first value that parses as an integer. An
// unparsable environment value falls through to the files; an unparsable
// file value is an error.
func lookupInt(s setting, files []source, fallback int) (int, error) {
	if v, ok := lookupEnv(s); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	for _, src := range files {
		v, ok := src.value(s.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s in %s: %q is not an integer", s.key, src.path, v)
		}
		return n, nil
	}
	return fallback, nil
}

func lookupURLs(files []source) []string {
	if v, ok := lookupEnv(websiteURLs); ok {
		return SplitURLs(v)
	}
	for _, src := range files {
		if v, ok := src.value(websiteURLs.key); ok {
			return SplitURLs(v)
		}
		if list := src.list(websiteURLs.key); len(list) > 0 {
			return SplitURLs(strings.Join(list, ","))
		}
	}
	return nil
}

// SplitURLs splits a comma-separated list, trimming each entry and
// dropping empty ones.
func SplitURLs(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
