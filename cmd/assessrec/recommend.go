package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/assessrec/internal/transport/chi"
)

func newRecommendCmd(flags *globalFlags) *cobra.Command {
	var budget int

	cmd := &cobra.Command{
		Use:   "recommend <query>",
		Short: "Answer one query and print the recommendations as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApplication(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.pipeline.Answer(ctx, strings.Join(args, " "), budget)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(chiTransport.NewRecommendResponse(res))
		},
	}
	cmd.Flags().IntVar(&budget, "budget", 0, "number of recommendations (0 uses pipeline.budget)")
	return cmd
}
