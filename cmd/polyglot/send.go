package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/polyglot/internal/config"
	redisAdapter "github.com/aretw0/polyglot/pkg/adapters/redis"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Enqueue a paragraph on the inbound stream",
	Long: `Publishes one paragraph message to the inbound stream. The text is taken from the
arguments, or from standard input when none are given. Use --warmup to send the no-op
warmup message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		msg, err := buildMessage(cmd, args)
		if err != nil {
			return err
		}

		client, err := redisAdapter.Connect(cfg.QueuesConnection)
		if err != nil {
			return err
		}
		defer client.Close()

		id, err := redisAdapter.Enqueue(cmd.Context(), client, inboundStream(cfg), msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msg.ID, id)
		return nil
	},
}

func buildMessage(cmd *cobra.Command, args []string) (domain.Message, error) {
	if warmup, _ := cmd.Flags().GetBool("warmup"); warmup {
		return domain.Message{ID: domain.WarmupMessageID}, nil
	}

	text, err := readText(args, cmd.InOrStdin())
	if err != nil {
		return domain.Message{}, err
	}

	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = ulid.Make().String()
	}
	corr, _ := cmd.Flags().GetString("correlation-id")
	if corr == "" {
		corr = id
	}
	paragraph, _ := cmd.Flags().GetInt("paragraph")

	return domain.Message{
		ID:            id,
		CorrelationID: corr,
		Properties:    map[string]string{domain.PropertyParagraphNumber: strconv.Itoa(paragraph)},
		Body:          []byte(text),
	}, nil
}

func inboundStream(cfg config.Config) string {
	return cfg.KeyPrefix + cfg.InboundStream
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().String("id", "", "Message id (default: generated)")
	sendCmd.Flags().String("correlation-id", "", "Correlation id (default: the message id)")
	sendCmd.Flags().IntP("paragraph", "n", 1, "Paragraph number")
	sendCmd.Flags().Bool("warmup", false, "Send the warmup message instead of a paragraph")
}
