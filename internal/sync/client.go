package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

// DefaultRequestTimeout bounds each page fetch and sale submission so
// a hanging backend cannot stall the event loop indefinitely.
const DefaultRequestTimeout = 30 * time.Second

// Client talks to the remote backend's product and sale endpoints.
type Client struct {
	productsURL string
	salesURL    string
	http        *http.Client
}

// NewClient creates a backend client. timeout <= 0 falls back to
// DefaultRequestTimeout.
func NewClient(productsURL, salesURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		productsURL: productsURL,
		salesURL:    salesURL,
		http:        &http.Client{Timeout: timeout},
	}
}

// FetchProductPage retrieves one page of the remote catalog.
// Non-2xx statuses are transport errors; the puller aborts on them.
func (c *Client) FetchProductPage(ctx context.Context, page, pageSize int) (productPage, error) {
	url := fmt.Sprintf("%s?page=%d&pageSize=%d", c.productsURL, page, pageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return productPage{}, fmt.Errorf("fetch products page %d: %w", page, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return productPage{}, transportErr("fetch products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return productPage{}, transportErr("fetch products",
			fmt.Errorf("page %d: unexpected status %d", page, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return productPage{}, transportErr("fetch products", err)
	}

	decoded, err := decodeProductPage(body)
	if err != nil {
		return productPage{}, transportErr("fetch products", err)
	}
	return decoded, nil
}

// SubmitSale pushes one completed sale to the backend. The backend
// upserts by sale id, so resubmitting an already-accepted sale is
// harmless.
func (c *Client) SubmitSale(ctx context.Context, sale pos.Sale) error {
	payload, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("submit sale %q: marshal: %w", sale.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.salesURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("submit sale %q: %w", sale.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportErr("submit sale", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transportErr("submit sale",
			fmt.Errorf("sale %q: unexpected status %d", sale.ID, resp.StatusCode))
	}
	return nil
}

// Ping reports whether the backend is reachable. Used by the
// connectivity monitor; any response, even an error status, counts as
// online.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.productsURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
