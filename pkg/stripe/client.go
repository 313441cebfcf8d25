package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Stripe REST API (api.stripe.com) using
// form-encoded requests and secret-key bearer auth.
type Client struct {
	baseURL    string
	secretKey  string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewClient creates a Stripe API client. An empty secret key produces a
// client whose calls fail with ErrNotConfigured; manual payment methods
// still work without one.
func NewClient(secretKey, successURL, cancelURL string) *Client {
	return &Client{
		baseURL:    "https://api.stripe.com/v1",
		secretKey:  strings.TrimSpace(secretKey),
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// ErrNotConfigured is returned when checkout is attempted without a secret key.
var ErrNotConfigured = fmt.Errorf("stripe secret key is missing")

// Product represents a Stripe product.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price represents a Stripe price attached to a product.
type Price struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// CheckoutSession represents a Stripe checkout session.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// CreateProduct registers a product for a purchasable item.
func (c *Client) CreateProduct(ctx context.Context, name string) (Product, error) {
	var product Product

	form := url.Values{}
	form.Set("name", name)

	if err := c.post(ctx, "/products", form, &product); err != nil {
		return product, err
	}
	return product, nil
}

// CreatePrice attaches a one-time price to a product. The amount is in
// the currency's smallest unit.
func (c *Client) CreatePrice(ctx context.Context, productID, currency string, unitAmount int64) (Price, error) {
	var price Price

	form := url.Values{}
	form.Set("product", productID)
	form.Set("currency", strings.ToLower(currency))
	form.Set("unit_amount", fmt.Sprintf("%d", unitAmount))

	if err := c.post(ctx, "/prices", form, &price); err != nil {
		return price, err
	}
	return price, nil
}

// CreateCheckoutSession opens a hosted payment page for a single price.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID string) (CheckoutSession, error) {
	var session CheckoutSession

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)

	if err := c.post(ctx, "/checkout/sessions", form, &session); err != nil {
		return session, err
	}
	return session, nil
}

// RetrieveSession fetches the current state of a checkout session.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	var session CheckoutSession

	if err := c.get(ctx, "/checkout/sessions/"+url.PathEscape(sessionID), &session); err != nil {
		return session, err
	}
	return session, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	if c.secretKey == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.secretKey == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("stripe error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return nil
}
