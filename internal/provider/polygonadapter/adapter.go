package polygonadapter

import (
    "context"
    "time"

    "stockmcp/internal/provider"
    "stockmcp/internal/provider/polygon"
)

type Config struct {
    Name string // display name, default: Polygon
}

// Adapter maps Polygon API replies to the normalized provider.StockData shape.
type Adapter struct {
    cfg    Config
    client *polygon.PolygonAPIClient

    // now is swappable for tests that pin the timestamp fallback.
    now func() time.Time
}

func New(cfg Config, client *polygon.PolygonAPIClient) *Adapter {
    if cfg.Name == "" { cfg.Name = "Polygon" }
    return &Adapter{cfg: cfg, client: client, now: time.Now}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Last(ctx context.Context, symbol string) (provider.StockData, error) {
    q, err := a.client.LastTrade(ctx, symbol)
    if err != nil {
        return provider.StockData{}, err
    }
    return a.toStockData(symbol, q), nil
}

func (a *Adapter) OpenClose(ctx context.Context, symbol, date string) (provider.StockData, error) {
    q, err := a.client.DailyOpenClose(ctx, symbol, date)
    if err != nil {
        return provider.StockData{}, err
    }
    return a.toStockData(symbol, q), nil
}

// toStockData normalizes a quote. Price is always the upstream close;
// the timestamp is the upstream trade date when present, otherwise the
// current wall clock in RFC 3339.
func (a *Adapter) toStockData(symbol string, q *polygon.Quote) provider.StockData {
    ts := q.From
    if ts == "" {
        ts = a.now().UTC().Format(time.RFC3339)
    }
    return provider.StockData{
        Symbol:    symbol,
        Price:     q.Close,
        Open:      q.Open,
        High:      q.High,
        Low:       q.Low,
        Volume:    q.Volume,
        Timestamp: ts,
    }
}
