package provider

import (
    "context"
)

// StockData is the normalized shape returned to MCP clients.
// Price mirrors the upstream close price without clamping or rounding.
type StockData struct {
    Symbol    string  `json:"symbol"`
    Price     float64 `json:"price"`
    Open      float64 `json:"open"`
    High      float64 `json:"high"`
    Low       float64 `json:"low"`
    Volume    float64 `json:"volume"`
    Timestamp string  `json:"timestamp"`
}

// Quotes looks up normalized stock prices from an upstream market data API.
type Quotes interface {
    Name() string
    // Last returns data for the most recent trade of symbol.
    Last(ctx context.Context, symbol string) (StockData, error)
    // OpenClose returns daily open/close data for symbol on date (YYYY-MM-DD).
    // The date is forwarded as-is; upstream rejects malformed values.
    OpenClose(ctx context.Context, symbol, date string) (StockData, error)
}
