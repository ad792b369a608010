package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/avencia/sitedigest/internal/config"
	"github.com/avencia/sitedigest/pkg/crawler"
	"github.com/avencia/sitedigest/pkg/llm"
	"github.com/avencia/sitedigest/pkg/reporter"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sitedigest",
	Short: "sitedigest - same-origin site crawler and dataset tool",
	Long: `sitedigest crawls a website breadth-first within its origin,
storing one JSON page record per fetched page for downstream indexing.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [URL]",
	Short: "Crawl a site and store its page records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		maxPages, _ := cmd.Flags().GetInt("max-pages")
		if !cmd.Flags().Changed("max-pages") {
			maxPages = cfg.Crawler.MaxPages
		}
		storageRoot, _ := cmd.Flags().GetString("storage-root")
		if storageRoot == "" {
			storageRoot = cfg.Storage.Root
		}

		c, err := crawler.New(args[0], crawler.Options{
			MaxPages:    maxPages,
			StorageRoot: storageRoot,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		// Fetch failures are per-URL and already logged; a finished
		// crawl exits 0 regardless.
		outputDir, err := c.Crawl(cmd.Context())
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Crawled data saved to: %s\n", outputDir)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [DIR]",
	Short: "Summarize the page records in a crawl output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		report, err := reporter.New().Generate(args[0], format)
		if err != nil {
			return err
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(report), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", output)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models the configured endpoint serves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		names, err := llm.NewClient(cfg.API, logger).ListModels(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// setup loads configuration and builds the logger shared by the
// subcommands.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	return zapCfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func init() {
	crawlCmd.Flags().Int("max-pages", crawler.DefaultMaxPages, "Maximum number of pages to visit")
	crawlCmd.Flags().String("storage-root", "", "Storage root directory (overrides config)")

	reportCmd.Flags().String("format", "json", "Report format (json, markdown)")
	reportCmd.Flags().String("output", "", "Output file for the report")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(modelsCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
