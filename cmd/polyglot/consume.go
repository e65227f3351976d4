package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/polyglot"
	"github.com/aretw0/polyglot/internal/presentation/tui"
	redisAdapter "github.com/aretw0/polyglot/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Process paragraphs from the inbound stream",
	Long: `Reads paragraph messages from the inbound Redis stream through a consumer group
and runs each one through the worker. Failures are logged; every message is acknowledged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(os.Stderr, polyglot.Version)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runConsumer(ctx, a)
	},
}

func runConsumer(ctx context.Context, a *app) error {
	name := a.cfg.ConsumerName
	if name == "" {
		name, _ = os.Hostname()
	}
	consumer := redisAdapter.NewConsumer(a.queues, a.inboundStream(), a.cfg.ConsumerGroup, name,
		redisAdapter.WithConsumerLogger(a.logger),
	)
	a.logger.Info("consuming", "stream", a.inboundStream(), "group", a.cfg.ConsumerGroup, "consumer", name)
	err := consumer.Run(ctx, a.worker.Handle)
	a.logger.Info("consumer stopped")
	return err
}

func init() {
	rootCmd.AddCommand(consumeCmd)
	consumeCmd.Flags().Bool("quiet", false, "Do not print the banner")
}
