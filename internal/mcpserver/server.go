package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"stockmcp/internal/provider"
	"stockmcp/internal/provider/polygon"
)

// toolGetStockPrice is the single tool exposed by this server.
const toolGetStockPrice = "get_stock_price"

type Config struct {
	Name          string // server implementation name, default: stock-mcp
	Version       string // server implementation version
	DefaultSymbol string // symbol backing the current-price resource
}

// Server registers the stock price resource and tool on an MCP server
// and serves them over stdio. Handlers are stateless; the only shared
// state is the read-only config and the quotes client.
type Server struct {
	cfg       Config
	quotes    provider.Quotes
	mcpServer *server.MCPServer
}

func New(cfg Config, quotes provider.Quotes) *Server {
	if cfg.Name == "" {
		cfg.Name = "stock-mcp"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s := &Server{cfg: cfg, quotes: quotes, mcpServer: mcpServer}
	s.registerResources()
	s.registerTools()
	return s
}

// ServeStdio serves MCP requests on stdin/stdout until ctx is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	return stdio.Listen(ctx, in, out)
}

// resourceURI is the only readable resource URI; reads of anything else fail.
func (s *Server) resourceURI() string {
	return fmt.Sprintf("stock://%s/current", s.cfg.DefaultSymbol)
}

func (s *Server) registerResources() {
	resource := mcp.NewResource(
		s.resourceURI(),
		fmt.Sprintf("Current %s stock price", s.cfg.DefaultSymbol),
		mcp.WithResourceDescription(fmt.Sprintf("Latest trade data for %s", s.cfg.DefaultSymbol)),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(resource, s.handleReadResource)
}

func (s *Server) registerTools() {
	// The schema lists date as required even though validation treats it
	// as optional; host clients depend on the declared shape staying stable.
	tool := mcp.NewTool(toolGetStockPrice,
		mcp.WithDescription("Get stock price data for a ticker symbol. Returns the latest trade when no date is given, or daily open/close data for a specific date (YYYY-MM-DD)."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock ticker symbol (e.g. AAPL, MSFT)"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in YYYY-MM-DD format for historical data (optional)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleCallTool)
}

func (s *Server) handleReadResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if request.Params.URI != s.resourceURI() {
		return nil, fmt.Errorf("unknown resource: %s", request.Params.URI)
	}

	data, err := s.quotes.Last(ctx, s.cfg.DefaultSymbol)
	if err != nil {
		if isUpstream(err) {
			return nil, fmt.Errorf("Polygon API error: %s", upstreamMessage(err))
		}
		return nil, err
	}

	text, err := marshalStockData(data)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}

func (s *Server) handleCallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.Params.Name != toolGetStockPrice {
		return nil, fmt.Errorf("unknown tool: %s", request.Params.Name)
	}

	args, err := parseLookupArgs(request.GetArguments())
	if err != nil {
		return nil, err
	}

	var data provider.StockData
	if args.Date == "" {
		data, err = s.quotes.Last(ctx, args.Symbol)
	} else {
		data, err = s.quotes.OpenClose(ctx, args.Symbol, args.Date)
	}
	if err != nil {
		// Upstream failures are reported in-band so the host can tell
		// "tool ran and failed" apart from a malformed invocation.
		if isUpstream(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Polygon API error: %s", upstreamMessage(err))), nil
		}
		return nil, err
	}

	text, err := marshalStockData(data)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

// lookupArgs is the validated argument shape for get_stock_price.
type lookupArgs struct {
	Symbol string
	Date   string
}

// parseLookupArgs shape-checks the untyped tool arguments before any
// upstream call. Date contents are not validated; malformed dates go
// upstream as-is and surface as an upstream error.
func parseLookupArgs(args map[string]any) (lookupArgs, error) {
	if args == nil {
		return lookupArgs{}, errors.New("invalid arguments: expected an object")
	}
	symbolVal, ok := args["symbol"]
	if !ok {
		return lookupArgs{}, errors.New("invalid arguments: missing required 'symbol'")
	}
	symbol, ok := symbolVal.(string)
	if !ok {
		return lookupArgs{}, errors.New("invalid arguments: 'symbol' must be a string")
	}
	if symbol == "" {
		return lookupArgs{}, errors.New("invalid arguments: 'symbol' cannot be empty")
	}
	out := lookupArgs{Symbol: symbol}
	if dateVal, ok := args["date"]; ok {
		date, ok := dateVal.(string)
		if !ok {
			return lookupArgs{}, errors.New("invalid arguments: 'date' must be a string")
		}
		out.Date = date
	}
	return out, nil
}

func marshalStockData(data provider.StockData) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding stock data: %w", err)
	}
	return string(b), nil
}

// isUpstream reports whether err came from the upstream HTTP exchange:
// a non-2xx API reply or a transport failure from the HTTP client.
func isUpstream(err error) bool {
	var apiErr *polygon.APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// upstreamMessage prefers the provider-supplied message over the raw
// transport error text.
func upstreamMessage(err error) string {
	var apiErr *polygon.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
