package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/usecase/evaluation"
)

func newEvaluateCmd(flags *globalFlags) *cobra.Command {
	var (
		dataset string
		k       int
		budget  int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the pipeline against a labelled dataset (Mean Recall@K, MAP@K)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := evaluation.LoadDataset(dataset)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApplication(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if k <= 0 {
				k = a.cfg.Evaluation.K
			}
			runner := evaluation.NewRunner(
				evaluation.NewPipelineAnswerer(a.pipeline),
				k, budget, a.cfg.Evaluation.Concurrency, a.logger,
			)

			report, err := runner.Run(ctx, ds)
			if err != nil {
				return err
			}
			a.logger.Info("Evaluation finished",
				zap.String("dataset", ds.Name),
				zap.Int("cases", len(report.Cases)),
				zap.Float64("mean_recall", report.MeanRecall),
				zap.Float64("map", report.MAP),
				zap.Duration("duration", report.Duration),
			)
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "testdata/eval.yaml", "labelled queries (YAML)")
	cmd.Flags().IntVar(&k, "k", 0, "cut-off rank (0 uses evaluation.k)")
	cmd.Flags().IntVar(&budget, "budget", 0, "results requested per query (raised to k)")
	return cmd
}

func printReport(w io.Writer, r evaluation.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tRECALL@%d\tAP@%d\tQUERY\n", r.K, r.K)
	for i, c := range r.Cases {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%s\n", i+1, c.Recall, c.AveragePrecision, truncate(c.Query, 60))
	}
	fmt.Fprintf(tw, "\nMean Recall@%d\t%.4f\n", r.K, r.MeanRecall)
	fmt.Fprintf(tw, "MAP@%d\t%.4f\n", r.K, r.MAP)
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
