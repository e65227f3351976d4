package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/polyglot/internal/presentation/tui"
	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/terms"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [text...]",
	Short: "Show how a paragraph would be annotated and routed",
	Long: `Annotates the text locally and prints its tokens, routing terms and filter.
Nothing is sent and no broker is contacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		text, err := readText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := annotate.Load(cfg.ModelName, cfg.ModelDir)
		if err != nil {
			return err
		}
		doc, err := a.Annotate(cmd.Context(), text)
		if err != nil {
			return err
		}

		in := tui.Inspection{
			Document: doc,
			Terms:    terms.Extractor{KeepStopwords: cfg.KeepStopwords}.Extract(doc),
		}
		if in.Terms.Len() > 0 {
			f, err := filter.New(filter.Limits{
				MaxExpressionLength: cfg.MaxFilterLength,
				MaxParameters:       cfg.MaxFilterParameters,
			}).Build(in.Terms)
			if err != nil {
				in.FilterErr = err
			} else {
				in.Filter = &f
			}
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(in)
		}

		rendered, err := tui.NewRenderer(out)(in.Markdown())
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print JSON instead of a report")
}
