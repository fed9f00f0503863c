package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coalsim/pkg/pipeline"
)

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		model  modelFlags
		sizing batchFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Simulate independent replicates and summarize them",
		Long: `Simulate many independent genealogies with the same parameters and report
the mean and variance of T_MRCA and total branch length, and with --theta the
mean folded site-frequency spectrum next to its neutral expectation.`,
		Example: `  coalsim batch -n 20 -r 1000
  coalsim batch -n 30 --theta 5 -r 500 --seed 1 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.BatchOptions{Options: model.options(cmd, cfg)}
			sizing.apply(cmd, cfg, &opts)

			runner, err := c.newRunner(ctx, cfg, model.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if asJSON {
				summary, err := runner.RunBatch(ctx, opts)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Simulating %s replicates...", humanize.Comma(int64(opts.Replicates))))
			spinner.Start()
			summary, err := runner.RunBatch(ctx, opts)
			if err != nil {
				// An interrupt already cleared the line; main reports it by exit code.
				if spinner.Cancelled() {
					spinner.Stop()
				} else {
					spinner.StopWithError("Batch failed")
				}
				return err
			}
			spinner.Stop()

			printBatch(summary, opts.Theta)
			return nil
		},
	}

	model.register(cmd)
	sizing.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}

func printBatch(s *pipeline.BatchSummary, theta *float64) {
	printSuccess("Summarized %s replicates of %d samples", humanize.Comma(int64(s.Replicates)), s.N)
	status := iconFresh
	if s.CacheHit {
		status = iconCached
	}
	printDetail("seed %d · %s · %s", s.Seed, s.Duration.Round(time.Millisecond), status)
	printNewline()

	fmt.Println(batchTable(s))
	if len(s.MeanSpectrum) == 0 {
		return
	}
	printNewline()
	fmt.Println(StyleTitle.Render("Folded spectrum") + StyleDim.Render(fmt.Sprintf("  mean sites %s", humanize.FtoaWithDigits(s.MeanSites, 3))))
	fmt.Println(meanSpectrumTable(s, theta))
}
