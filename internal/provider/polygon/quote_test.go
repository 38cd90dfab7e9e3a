package polygon_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	polygon "stockmcp/internal/provider/polygon"
)

func jsonBody(t *testing.T, v any) io.ReadCloser {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(v))
	return io.NopCloser(buffer)
}

func TestLastTrade(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock http client stubbing the last-trade endpoint
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Contains(t, req.URL.Path, "/v1/last/stocks/AAPL")
			require.Equal(t, "test", req.URL.Query().Get("apiKey"))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body: jsonBody(t, map[string]any{
					"status": "success",
					"symbol": "AAPL",
					"open":   148.9,
					"high":   151.0,
					"low":    147.5,
					"close":  150.25,
					"volume": 12345678.0,
				}),
			}, nil
		}).
		Times(1)

	client, err := polygon.NewPolygonAPIClient("test", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: fetch the last trade.
	quote, err := client.LastTrade(t.Context(), "AAPL")

	// Assert: the reply is decoded as-is.
	require.NoError(t, err)
	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, 150.25, quote.Close)
	require.Empty(t, quote.From)
}

func TestDailyOpenClose(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock http client stubbing the open-close endpoint
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Contains(t, req.URL.Path, "/v1/open-close/MSFT/2024-01-05")

			return &http.Response{
				StatusCode: http.StatusOK,
				Body: jsonBody(t, map[string]any{
					"status": "OK",
					"from":   "2024-01-05",
					"symbol": "MSFT",
					"open":   368.51,
					"high":   370.1,
					"low":    366.5,
					"close":  367.75,
					"volume": 20000000.0,
				}),
			}, nil
		}).
		Times(1)

	client, err := polygon.NewPolygonAPIClient("test", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: fetch the daily open/close.
	quote, err := client.DailyOpenClose(t.Context(), "MSFT", "2024-01-05")

	// Assert: date and close survive the round trip.
	require.NoError(t, err)
	require.Equal(t, "2024-01-05", quote.From)
	require.Equal(t, 367.75, quote.Close)
}

func TestLastTrade_APIErrorMessage(t *testing.T) {
	t.Parallel()

	// Arrange: upstream replies 429 with a provider message
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Body:       jsonBody(t, map[string]any{"message": "rate limited"}),
			}, nil
		}).
		Times(1)

	client, err := polygon.NewPolygonAPIClient("test", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	_, err = client.LastTrade(t.Context(), "AAPL")

	// Assert: the typed error carries the provider message and status.
	var apiErr *polygon.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, "rate limited", apiErr.Message)
}

func TestLastTrade_APIErrorWithoutMessage(t *testing.T) {
	t.Parallel()

	// Arrange: upstream replies with a non-JSON body
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(strings.NewReader("upstream exploded")),
			}, nil
		}).
		Times(1)

	client, err := polygon.NewPolygonAPIClient("test", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	_, err = client.LastTrade(t.Context(), "AAPL")

	// Assert: falls back to the status code message.
	var apiErr *polygon.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "unexpected status code: 502", apiErr.Message)
}

func TestLastTrade_TransportError(t *testing.T) {
	t.Parallel()

	// Arrange: the HTTP client itself fails
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(1)

	client, err := polygon.NewPolygonAPIClient("test", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	_, err = client.LastTrade(t.Context(), "AAPL")

	// Assert
	require.ErrorContains(t, err, "performing request")
}
