package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/weathercrawl/config"
	"github.com/use-agent/weathercrawl/logging"
	"github.com/use-agent/weathercrawl/scraper"
)

// scrapeFlags are the flags of the root command.
type scrapeFlags struct {
	url        string
	noHeadless bool
	timeout    int
	logLevel   string
	engine     string
}

func newRootCmd() *cobra.Command {
	var f scrapeFlags

	cmd := &cobra.Command{
		Use:           "weathercrawl --url <weather page>",
		Short:         "Read location, temperature and condition from a weather portal page",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runScrape(cmd, cfg, f)
		},
	}

	cmd.Flags().StringVar(&f.url, "url", "", "target weather URL (e.g. a Naver Weather page)")
	cmd.Flags().BoolVar(&f.noHeadless, "no-headless", false, "run the browser with a visible window")
	cmd.Flags().IntVar(&f.timeout, "timeout", 10, "max wait time in seconds for each element")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "INFO", "logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	cmd.Flags().StringVar(&f.engine, "engine", "", `session engine: "browser" or "http" (default from WEATHERCRAWL_ENGINE)`)
	_ = cmd.MarkFlagRequired("url")

	cmd.AddCommand(newServeCmd(), newMCPCmd())
	return cmd
}

// loadConfig reads the environment and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, f scrapeFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Scraper.Timeout = f.timeout
	}
	if flags.Changed("no-headless") {
		cfg.Browser.Headless = !f.noHeadless
	}
	if flags.Changed("engine") {
		cfg.Scraper.Engine = f.engine
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logging.Setup(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	return cfg, nil
}

func runScrape(cmd *cobra.Command, cfg *config.Config, f scrapeFlags) error {
	sc, err := scraper.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	record, err := sc.Scrape(cmd.Context(), f.url, cfg.Browser.Headless, time.Duration(cfg.Scraper.Timeout)*time.Second)
	if err != nil {
		return err
	}
	return printRecord(cmd.OutOrStdout(), record.String())
}

func printRecord(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
