// Package mcpserver exposes the scraper as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/weathercrawl/models"
)

// ToolName is the name of the single tool this server registers.
const ToolName = "scrape_weather"

// Scraper is the part of scraper.Scraper the tool uses.
type Scraper interface {
	Scrape(ctx context.Context, url string, headless bool, timeout time.Duration) (*models.WeatherRecord, error)
}

// New builds an MCP server with the scrape_weather tool registered.
func New(sc Scraper, version string, defaultTimeout int) *server.MCPServer {
	s := server.NewMCPServer(
		"weathercrawl",
		version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Open a weather page in a headless browser and read the location, current temperature and condition. Fields that cannot be found come back as null."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The weather page to scrape (e.g. a Naver Weather URL)"),
		),
		mcp.WithNumber("timeout",
			mcp.Description(fmt.Sprintf("Seconds to wait for each field (default: %d)", defaultTimeout)),
		),
		mcp.WithBoolean("headless",
			mcp.Description("Run the browser without a window (default: true)"),
		),
	)
	s.AddTool(tool, handleScrapeWeather(sc, defaultTimeout))

	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func handleScrapeWeather(sc Scraper, defaultTimeout int) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		timeout := request.GetFloat("timeout", float64(defaultTimeout))
		headless := request.GetBool("headless", true)

		record, err := sc.Scrape(ctx, url, headless, time.Duration(timeout*float64(time.Second)))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape failed: %v", err)), nil
		}
		return mcp.NewToolResultText(record.String()), nil
	}
}
