package main

import (
	"github.com/spf13/cobra"
	"github.com/use-agent/weathercrawl/api/handler"
	"github.com/use-agent/weathercrawl/mcpserver"
	"github.com/use-agent/weathercrawl/scraper"
)

func newMCPCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the scrape_weather tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol; logs stay on stderr.
			cfg, err := loadConfig(cmd, scrapeFlags{logLevel: logLevel})
			if err != nil {
				return err
			}

			sc, err := scraper.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			return mcpserver.Serve(mcpserver.New(sc, handler.Version, cfg.Scraper.Timeout))
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "INFO", "logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	return cmd
}
