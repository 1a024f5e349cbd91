package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/domain"
)

const (
	cartReminderPath   = "/api/send-cart-reminder"
	expiryReminderPath = "/api/send-expiry-reminder"

	reminderTypeAbandonment = "cart-abandonment"
)

// Notifier delivers reminder notifications to the main application.
type Notifier interface {
	SendCartReminder(ctx context.Context, userID string, items []domain.CartItem) error
	SendExpiryReminder(ctx context.Context, userID, courseID string, daysUntilExpiry int) error
}

type cartReminderPayload struct {
	CartItems    []domain.CartItem `json:"cartItems"`
	UserID       string            `json:"userId"`
	ReminderType string            `json:"reminderType"`
}

type expiryReminderPayload struct {
	UserID          string `json:"userId"`
	CourseID        string `json:"courseId"`
	DaysUntilExpiry int    `json:"daysUntilExpiry"`
	ReminderType    string `json:"reminderType"`
}

// Config carries the gateway endpoint and its credentials.
type Config struct {
	AppURL       string
	APISecret    string
	WorkerOrigin string

	// Delivery policy. Zero values fall back to 3 attempts starting at
	// 500ms and a 10s request timeout.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RequestTimeout time.Duration
}

// Client posts reminder payloads to the notification gateway. Requests are
// retried with exponential backoff and guarded by a circuit breaker; a
// request that still fails after the retry budget is reported back to the
// calling actor, which applies its own retain/clear rules.
type Client struct {
	cfg     Config
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *zap.SugaredLogger
}

func NewClient(cfg Config, logger *zap.SugaredLogger) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "notification-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.RequestTimeout},
		breaker: breaker,
		logger:  logger.Named("gateway"),
	}
}

func (c *Client) SendCartReminder(ctx context.Context, userID string, items []domain.CartItem) error {
	payload := cartReminderPayload{
		CartItems:    items,
		UserID:       userID,
		ReminderType: reminderTypeAbandonment,
	}
	return c.post(ctx, cartReminderPath, payload)
}

func (c *Client) SendExpiryReminder(ctx context.Context, userID, courseID string, daysUntilExpiry int) error {
	payload := expiryReminderPayload{
		UserID:          userID,
		CourseID:        courseID,
		DaysUntilExpiry: daysUntilExpiry,
		ReminderType:    fmt.Sprintf("expiry-reminder-%d-day", daysUntilExpiry),
	}
	return c.post(ctx, expiryReminderPath, payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = c.breaker.Execute(func() (struct{}, error) {
		retrier := retry.NewRetrier(c.cfg.MaxAttempts, c.cfg.InitialBackoff, c.cfg.MaxBackoff)
		err := retrier.RunContext(ctx, func(ctx context.Context) error {
			return c.doPost(ctx, path, body)
		})
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("notification gateway call failed: %w", err)
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AppURL+path, bytes.NewReader(body))
	if err != nil {
		return retry.Stop(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APISecret)
	req.Header.Set("x-worker-origin", c.cfg.WorkerOrigin)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		// client errors will not succeed on retry
		return retry.Stop(fmt.Errorf("gateway rejected request with %d", resp.StatusCode))
	}

	c.logger.Debugw("notification delivered", "path", path, "status", resp.StatusCode)
	return nil
}
