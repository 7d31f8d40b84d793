package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alpha-nc/intake"
	"github.com/alpha-nc/intake/internal/logging"
	"github.com/alpha-nc/intake/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the questionnaire interactively in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		schemaPath, _ := cmd.Flags().GetString("schema")
		tag, _ := cmd.Flags().GetString("tag")
		endpoint, _ := cmd.Flags().GetString("endpoint")
		rawQuery, _ := cmd.Flags().GetString("query")
		verbose, _ := cmd.Flags().GetBool("verbose")

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		query, err := url.ParseQuery(rawQuery)
		if err != nil {
			logger.Error("invalid query string", "err", err)
			os.Exit(1)
		}

		eng, err := intake.Load(schemaPath,
			intake.WithTag(tag),
			intake.WithEndpoint(endpoint),
			intake.WithLogger(logger),
		)
		if err != nil {
			logger.Error("failed to initialize engine", "err", err)
			os.Exit(1)
		}

		presenter, err := tui.New(eng)
		if err != nil {
			logger.Error("failed to initialize presenter", "err", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := presenter.Run(ctx, query); err != nil && ctx.Err() == nil {
			logger.Error("session failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("endpoint", "", "Submission webhook URL")
	runCmd.Flags().String("query", "", "Entry query string carrying campaign parameters (utm_*, ref, variant)")
	runCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
	_ = runCmd.MarkFlagRequired("endpoint")
}
