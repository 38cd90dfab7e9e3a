package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"

    "stockmcp/internal/config"
    "stockmcp/internal/httpx"
    "stockmcp/internal/mcpserver"
    polygonpkg "stockmcp/internal/provider/polygon"
    "stockmcp/internal/provider/polygonadapter"
)

func main() {
    // Load a local .env if present; real env vars win.
    _ = godotenv.Load()

    cfgPath := os.Getenv("CONFIG_FILE")
    cfg, err := config.Load(cfgPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if err := cfg.Validate(); err != nil { log.Fatalf("config: %v", err) }

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    pgClient, err := polygonpkg.NewPolygonAPIClient(
        cfg.Polygon.APIKey,
        polygonpkg.WithBaseURL(cfg.Polygon.BaseURL),
        polygonpkg.WithHTTPClient(httpClient),
        polygonpkg.WithHeader(http.Header{
            "Accept": []string{"application/json"},
        }),
    )
    if err != nil { log.Fatalf("polygon client: %v", err) }

    quotes := polygonadapter.New(polygonadapter.Config{Name: "Polygon"}, pgClient)

    srv := mcpserver.New(mcpserver.Config{
        Name:          cfg.Server.Name,
        Version:       cfg.Server.Version,
        DefaultSymbol: cfg.Polygon.DefaultSymbol,
    }, quotes)

    // graceful shutdown: SIGINT/SIGTERM cancels the stdio serve loop
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    log.Printf("stock-mcp serving on stdio (default symbol %s)", cfg.Polygon.DefaultSymbol)
    if err := srv.ServeStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
        log.Fatalf("server: %v", err)
    }
}
