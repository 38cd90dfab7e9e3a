package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
)

type Server struct {
    Name              string `json:"name"`
    Version           string `json:"version"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Polygon struct {
    APIKey        string `json:"api_key"`
    BaseURL       string `json:"base_url"`
    DefaultSymbol string `json:"default_symbol"`
}

type Config struct {
    Server  Server  `json:"server"`
    Polygon Polygon `json:"polygon"`
}

func Default() Config {
    return Config{
        Server: Server{
            Name:              "stock-mcp",
            Version:           "1.0.0",
            RequestTimeoutSec: 10,
        },
        Polygon: Polygon{
            BaseURL:       "https://api.polygon.io",
            DefaultSymbol: "AAPL",
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

// Validate reports configuration the server cannot start without.
// The API key is required before any request is served.
func (c Config) Validate() error {
    if c.Polygon.APIKey == "" {
        return errors.New("POLYGON_API_KEY environment variable is required")
    }
    if c.Polygon.DefaultSymbol == "" {
        return errors.New("default symbol cannot be empty")
    }
    return nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("POLYGON_API_KEY"); v != "" { cfg.Polygon.APIKey = v }
    if v := os.Getenv("POLYGON_BASE_URL"); v != "" { cfg.Polygon.BaseURL = v }
    if v := os.Getenv("DEFAULT_SYMBOL"); v != "" { cfg.Polygon.DefaultSymbol = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
}
