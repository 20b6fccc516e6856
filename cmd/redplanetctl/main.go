package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/redplanet/browser"
	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/render"
	"github.com/use-agent/redplanet/scraper"
	"github.com/use-agent/redplanet/storage"
)

var version = "dev"

var (
	outputFormat string
	outputFile   string
	save         bool
	showUI       bool
	proxyURL     string
	hemispheres  int
	timeout      time.Duration
	verbose      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "redplanetctl",
		Short:   "Scrape and inspect the Mars mission record",
		Version: version,
		Long: `redplanetctl runs the Mars scraper from the command line and reads the
record stored by the redplanet server. Configuration comes from the same
REDPLANET_* environment variables the server uses.`,
		Example: `  # Scrape and print Markdown
  redplanetctl scrape -f markdown

  # Scrape with a visible browser and store the result
  redplanetctl scrape --showui --save

  # Print the stored record as JSON
  redplanetctl show`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(cmd.ErrOrStderr(), verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, markdown, html)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file path (default stdout)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scraper progress to stderr")

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run a full scrape and print the record",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}
	scrapeCmd.Flags().BoolVar(&save, "save", false, "Store the record like the server's /scrape does")
	scrapeCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	scrapeCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("REDPLANET_PROXY"), "Proxy URL, defaults to REDPLANET_PROXY env var")
	scrapeCmd.Flags().IntVar(&hemispheres, "hemispheres", -1, "Number of hemispheres to visit (-1 uses REDPLANET_HEMISPHERE_COUNT)")
	scrapeCmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Minute, "Overall scrape timeout")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored record",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}

	rootCmd.AddCommand(scrapeCmd, showCmd)
	return rootCmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	if err := validateFormat(outputFormat); err != nil {
		return err
	}

	cfg := config.Load()
	cfg.Browser.Proxy = proxyURL
	if showUI {
		cfg.Browser.Headless = false
	}
	if hemispheres >= 0 {
		cfg.Scraper.HemisphereCount = hemispheres
	}

	sc, err := scraper.New(cfg.Scraper, browser.Launcher(cfg.Browser),
		scraper.WithFetcher(scraper.NewHTTPFetcher(cfg.Browser.Proxy)),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	data, err := sc.ScrapeAll(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if save {
		st, err := storage.Open(cfg.Storage)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer st.Close()
		if err := st.Upsert(ctx, data); err != nil {
			return fmt.Errorf("store record: %w", err)
		}
		slog.Info("record stored", "path", cfg.Storage.DBPath, "collection", cfg.Storage.Collection)
	}

	return output(cmd.OutOrStdout(), data)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := validateFormat(outputFormat); err != nil {
		return err
	}

	cfg := config.Load()
	if cfg.Storage.DBPath == "" {
		return fmt.Errorf("REDPLANET_DB_PATH is empty: nothing is persisted outside the server process")
	}

	st, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	data, err := st.Get(cmd.Context())
	if err != nil {
		return err
	}
	return output(cmd.OutOrStdout(), data)
}

// output writes data to outputFile, or to stdout when none is set.
func output(stdout io.Writer, data *models.MarsData) error {
	if outputFile == "" {
		return writeRecord(stdout, data, outputFormat)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := writeRecord(f, data, outputFormat); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRecord(w io.Writer, data *models.MarsData, format string) error {
	switch format {
	case "markdown":
		md, err := render.Markdown(data)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md+"\n")
		return err
	case "html":
		return render.Page(w, data)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
}

func validateFormat(format string) error {
	switch format {
	case "json", "markdown", "html":
		return nil
	}
	return fmt.Errorf("invalid format %q: must be json, markdown or html", format)
}

// initLogger sends text logs to w; scraper progress shows up only with -v.
func initLogger(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
