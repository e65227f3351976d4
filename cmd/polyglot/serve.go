package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/polyglot"
	"github.com/aretw0/polyglot/internal/presentation/tui"
	httpAdapter "github.com/aretw0/polyglot/pkg/adapters/http"
	"github.com/aretw0/polyglot/pkg/terms"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger",
	Long: `Starts the worker behind an HTTP trigger (POST /v1/messages), with /healthz,
/metrics and a side-effect free POST /v1/inspect. With --consume the inbound
stream is processed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.HTTPAddr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}
		consume, _ := cmd.Flags().GetBool("consume")
		tui.PrintBanner(os.Stderr, polyglot.Version)

		handler := httpAdapter.NewHandler(a.worker,
			httpAdapter.WithAnnotator(a.annotator),
			httpAdapter.WithExtractor(terms.Extractor{KeepStopwords: a.cfg.KeepStopwords}),
			httpAdapter.WithFilterLimits(a.filterLimits()),
			httpAdapter.WithGatherer(a.registry),
			httpAdapter.WithLogger(a.logger),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.logger.Info("http trigger listening", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			a.logger.Info("http trigger stopped")
			return nil
		})
		if consume {
			g.Go(func() error {
				return runConsumer(ctx, a)
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides http_addr)")
	serveCmd.Flags().Bool("consume", false, "Also process the inbound stream")
}
