package pushover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/msuddaby/DownDetector/logging"
)

const (
	// DefaultEndpoint is the Pushover message API.
	DefaultEndpoint = "https://api.pushover.net/1/messages.json"

	// PriorityHigh bypasses the recipient's quiet hours.
	PriorityHigh = 1

	maxResponseSize = 1 << 20 // 1 MB
)

// Message is a single notification.
type Message struct {
	Title    string
	Message  string
	Priority int
}

// APIError is returned when Pushover answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("pushover returned status %d: %s", e.StatusCode, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("pushover returned status %d", e.StatusCode)
}

type response struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// Client sends notifications with an application token to a single user.
type Client struct {
	Endpoint string
	AppToken string
	UserKey  string
	HTTP     *http.Client
	Logger   *logging.Logger
}

// New returns a Client for the public Pushover endpoint.
func New(appToken, userKey string, httpClient *http.Client, logger *logging.Logger) *Client {
	return &Client{
		Endpoint: DefaultEndpoint,
		AppToken: appToken,
		UserKey:  userKey,
		HTTP:     httpClient,
		Logger:   logger,
	}
}

// Send posts msg and returns the Pushover request id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	form := url.Values{}
	form.Set("token", c.AppToken)
	form.Set("user", c.UserKey)
	form.Set("title", msg.Title)
	form.Set("message", msg.Message)
	form.Set("priority", strconv.Itoa(msg.Priority))

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send pushover alert: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read pushover response: %w", err)
	}

	var parsed response
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Errors:     parsed.Errors,
		}
	}
	return parsed.Request, nil
}

// Notify sends a high-priority alert. Delivery failures are logged and
// never returned, so a broken notification channel cannot stop the caller.
func (c *Client) Notify(ctx context.Context, title, message string) {
	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	requestID, err := c.Send(ctx, Message{Title: title, Message: message, Priority: PriorityHigh})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			logger.ErrorLog.Printf("Failed to send Pushover alert: %s", apiErr.Body)
			return
		}
		logger.ErrorLog.Printf("Error sending Pushover alert: %v", err)
		return
	}

	if requestID != "" {
		logger.InfoLog.Printf("Pushover alert sent successfully (request %s)", requestID)
		return
	}
	logger.InfoLog.Println("Pushover alert sent successfully")
}
