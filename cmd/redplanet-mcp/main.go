package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/render"
)

func main() {
	apiURL := os.Getenv("REDPLANET_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5000"
	}
	apiKey := os.Getenv("REDPLANET_API_KEY")

	s := newServer(apiURL, apiKey)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(apiURL, apiKey string) *server.MCPServer {
	s := server.NewMCPServer(
		"redplanet",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	formatArg := mcp.WithString("format",
		mcp.Description("Output format: 'markdown' (default) or 'json'"),
		mcp.Enum("markdown", "json"),
	)

	scrapeTool := mcp.NewTool("scrape_mars",
		mcp.WithDescription("Run a fresh scrape of the Mars news, featured image, facts table and hemisphere gallery, store it, and return the new record. Drives a headless browser; takes tens of seconds."),
		formatArg,
	)
	s.AddTool(scrapeTool, handleScrapeMars(apiURL, apiKey))

	getTool := mcp.NewTool("get_mars",
		mcp.WithDescription("Return the most recently stored Mars record without scraping."),
		formatArg,
	)
	s.AddTool(getTool, handleGetMars(apiURL, apiKey))

	return s
}

func handleScrapeMars(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := apiCall(ctx, client, http.MethodPost, apiURL+"/api/v1/scrape", apiKey)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		return recordResult(body, request.GetString("format", "markdown")), nil
	}
}

func handleGetMars(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := apiCall(ctx, client, http.MethodGet, apiURL+"/api/v1/mars", apiKey)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		return recordResult(body, request.GetString("format", "markdown")), nil
	}
}

// apiCall sends a bodiless request and returns the raw response body. Error
// statuses are not treated specially; the JSON envelope carries them.
func apiCall(ctx context.Context, client *http.Client, method, url, apiKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// recordResult turns an API envelope into a tool result in the given format.
func recordResult(body []byte, format string) *mcp.CallToolResult {
	var resp models.ScrapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err))
	}

	if !resp.Success || resp.Data == nil {
		errMsg := "request failed"
		if resp.Error != nil {
			errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
		}
		return mcp.NewToolResultError(errMsg)
	}

	if format == "json" {
		out, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode record: %v", err))
		}
		return mcp.NewToolResultText(string(out))
	}

	md, err := render.Markdown(resp.Data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render record: %v", err))
	}
	return mcp.NewToolResultText(md)
}
