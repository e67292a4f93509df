// Package catalog reads hotel metadata from the hotel collaborator.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/domain"
)

type Client struct {
	base string
	hc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{base: baseURL, hc: &http.Client{Timeout: timeout}}
}

func (c *Client) GetHotel(ctx context.Context, hotelID string) (domain.Hotel, error) {
	url := fmt.Sprintf("%s/hotels/%s", c.base, hotelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Hotel{}, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel lookup %s: %w", hotelID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Hotel{}, fmt.Errorf("hotel lookup %s: catalog returned %d", hotelID, resp.StatusCode)
	}

	var h domain.Hotel
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel lookup %s: decode: %w", hotelID, err)
	}
	return h, nil
}
