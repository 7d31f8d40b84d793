package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/alpha-nc/intake"
	"github.com/alpha-nc/intake/internal/logging"
	"github.com/alpha-nc/intake/pkg/adapters/httpapi"
	"github.com/alpha-nc/intake/pkg/adapters/memory"
	redisstore "github.com/alpha-nc/intake/pkg/adapters/redis"
	"github.com/alpha-nc/intake/pkg/observability"
	"github.com/alpha-nc/intake/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the questionnaire session as a JSON API",
	Long:  `Starts the intake engine behind an HTTP API, with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		schemaPath, _ := cmd.Flags().GetString("schema")
		tag, _ := cmd.Flags().GetString("tag")
		endpoint, _ := cmd.Flags().GetString("endpoint")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		rawQuery, _ := cmd.Flags().GetString("query")
		debug, _ := cmd.Flags().GetBool("debug")

		logger := logging.New(slog.LevelInfo)

		query, err := url.ParseQuery(rawQuery)
		if err != nil {
			logger.Error("invalid query string", "err", err)
			os.Exit(1)
		}

		var store ports.SnapshotStore = memory.NewStore()
		if redisAddr != "" {
			store = redisstore.New(redisAddr, "", 0, tag)
		}

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		eng, err := intake.Load(schemaPath,
			intake.WithTag(tag),
			intake.WithEndpoint(endpoint),
			intake.WithStore(store),
			intake.WithLogger(logger),
			intake.WithLifecycleHooks(metrics.Hooks()),
		)
		if err != nil {
			logger.Error("failed to initialize engine", "err", err)
			os.Exit(1)
		}

		if err := eng.Start(cmd.Context(), query); err != nil {
			logger.Error("failed to start session", "err", err)
			os.Exit(1)
		}
		defer eng.Close()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", httpapi.NewHandler(eng,
			httpapi.WithDebug(debug),
			httpapi.WithLogger(logger),
		))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting intake server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Intake server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("endpoint", "", "Submission webhook URL")
	serveCmd.Flags().String("redis", "", "Redis address for snapshot persistence (default: in-memory)")
	serveCmd.Flags().String("query", "", "Entry query string carrying campaign parameters")
	serveCmd.Flags().Bool("debug", false, "Expose the read-only payload preview endpoint")
	_ = serveCmd.MarkFlagRequired("endpoint")
}
