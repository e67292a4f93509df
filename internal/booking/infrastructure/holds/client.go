// Package holds talks to the inventory collaborator that owns room holds.
package holds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
)

type Client struct {
	log  *slog.Logger
	base string
	hc   *http.Client
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:  log,
		base: baseURL,
		hc:   &http.Client{Timeout: timeout},
	}
}

// Consume claims the hold. The caller's context bounds the call; a timeout is
// reported the same way as any other consumption failure.
func (c *Client) Consume(ctx context.Context, holdID string) error {
	resp, err := c.post(ctx, holdID, "consume")
	if err != nil {
		reason := domain.HoldNotFound
		if errors.Is(err, context.DeadlineExceeded) {
			reason = domain.HoldTimeout
		}
		return &domain.HoldConsumptionError{HoldID: holdID, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return &domain.HoldConsumptionError{HoldID: holdID, Reason: domain.HoldAlreadyConsumed}
	case http.StatusGone:
		return &domain.HoldConsumptionError{HoldID: holdID, Reason: domain.HoldExpired}
	case http.StatusNotFound:
		return &domain.HoldConsumptionError{HoldID: holdID, Reason: domain.HoldNotFound}
	default:
		return &domain.HoldConsumptionError{
			HoldID: holdID,
			Reason: domain.HoldNotFound,
			Err:    fmt.Errorf("hold store returned %d", resp.StatusCode),
		}
	}
}

// Release frees the inventory slot. Unknown and already-consumed holds count
// as released, which makes the compensation path safe to repeat.
func (c *Client) Release(ctx context.Context, holdID string) error {
	resp, err := c.post(ctx, holdID, "release")
	if err != nil {
		return fmt.Errorf("release hold %s: %w", holdID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound, http.StatusGone, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("release hold %s: hold store returned %d", holdID, resp.StatusCode)
	}
}

func (c *Client) post(ctx context.Context, holdID, action string) (*http.Response, error) {
	url := fmt.Sprintf("%s/holds/%s/%s", c.base, holdID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return resp, err
}
