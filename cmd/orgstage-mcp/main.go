package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "orgstage/internal/adapters/mcp"
	"orgstage/internal/adapters/orgfile"
	"orgstage/internal/adapters/staging"
	"orgstage/internal/config"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "path to the config file")
	dirFlag := flag.String("dir", "", "canonical document directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("orgstage-mcp: %v", err)
	}
	if *dirFlag != "" {
		cfg.Dir = config.ExpandHome(*dirFlag)
	}
	if cfg.Dir == "" {
		log.Fatal("orgstage-mcp: no document directory configured")
	}

	store := orgfile.NewStore(cfg.Dir, cfg.Files, cfg.InboxFile, cfg.AllKeywords())
	area := staging.NewArea(cfg.StagingDir, config.ManifestFile, staging.SHA256)

	mcpServer := server.NewMCPServer(
		"orgstage-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, store, area, cfg)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("orgstage-mcp: %v", err)
	}
}
