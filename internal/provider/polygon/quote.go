package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Quote is a stock quote as returned by the Polygon API. Both the last-trade
// and the daily open/close endpoints are decoded into this shape; fields a
// given endpoint does not supply are left at their zero value.
type Quote struct {
	Status     string  `json:"status"`
	From       string  `json:"from"`
	Symbol     string  `json:"symbol"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     float64 `json:"volume"`
	AfterHours float64 `json:"afterHours"`
	PreMarket  float64 `json:"preMarket"`
}

// APIError is a non-2xx reply from the Polygon API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// LastTrade retrieves the most recent trade for symbol.
func (c *PolygonAPIClient) LastTrade(ctx context.Context, symbol string, opts ...PolygonAPIClientOption) (*Quote, error) {
	path := fmt.Sprintf("v1/last/stocks/%s", url.PathEscape(symbol))
	return c.getQuote(ctx, path, opts...)
}

// DailyOpenClose retrieves the open/close data for symbol on date (YYYY-MM-DD).
// The date is not validated here; upstream rejects malformed values.
func (c *PolygonAPIClient) DailyOpenClose(ctx context.Context, symbol, date string, opts ...PolygonAPIClientOption) (*Quote, error) {
	path := fmt.Sprintf("v1/open-close/%s/%s", url.PathEscape(symbol), url.PathEscape(date))
	return c.getQuote(ctx, path, opts...)
}

func (c *PolygonAPIClient) getQuote(ctx context.Context, path string, opts ...PolygonAPIClientOption) (*Quote, error) {
	var override = &PolygonAPIClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	endpoint := fmt.Sprintf("%s/%s?%s", override.baseURL, path, override.query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeError(res)
	}

	var quote Quote
	if err := json.NewDecoder(res.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	return &quote, nil
}

// decodeError builds an APIError from a non-2xx reply, preferring the
// provider-supplied message field over the bare HTTP status.
func decodeError(res *http.Response) error {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Message:    fmt.Sprintf("unexpected status code: %d", res.StatusCode),
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, 2<<10))
	if err != nil {
		return apiErr
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return apiErr
	}
	switch {
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Error != "":
		apiErr.Message = body.Error
	}
	return apiErr
}
