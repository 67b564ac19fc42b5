// Package client is a Go client for the course sales HTTP API.
package client

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"resty.dev/v3"
)

// Sale is a course sale as exchanged with the API. On create, fields left nil
// are sent as null and rejected by the server.
type Sale struct {
	ID       uint             `json:"id,omitempty"`
	Name     *string          `json:"name"`
	Course   *string          `json:"course"`
	Price    *decimal.Decimal `json:"price"`
	SaleDate *civil.Date      `json:"saleDate"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sales api: status %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to a running sales API.
type Client struct {
	http *resty.Client
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
	}
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

// ListSales fetches every recorded sale.
func (c *Client) ListSales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	var apiErr errorBody

	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/sales")
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	if res.IsError() {
		return nil, &APIError{StatusCode: res.StatusCode(), Message: apiErr.Error}
	}
	return out, nil
}

// CreateSale records a new sale and returns it with its assigned ID.
// Any ID set on sale is ignored by the server.
func (c *Client) CreateSale(ctx context.Context, sale Sale) (*Sale, error) {
	var out Sale
	var apiErr errorBody

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sale).
		SetResult(&out).
		SetError(&apiErr).
		Post("/sales")
	if err != nil {
		return nil, errors.Wrap(err, "create sale")
	}
	if res.IsError() {
		return nil, &APIError{StatusCode: res.StatusCode(), Message: apiErr.Error}
	}
	return &out, nil
}
