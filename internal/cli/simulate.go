package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coalsim/pkg/pipeline"
	"github.com/matzehuels/coalsim/pkg/sfs"
)

// reportFlags select the statistics printed by simulate.
type reportFlags struct {
	tmrca        bool
	branchLength bool
	tij          bool
	sequences    bool
	frequency    bool
	quiet        bool
	table        bool
}

func (r reportFlags) any() bool {
	return r.tmrca || r.branchLength || r.tij || r.sequences || r.frequency
}

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		model  modelFlags
		report reportFlags
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate one genealogy and report its statistics",
		Long: `Simulate the genealogy of n sampled individuals, or load one with --input,
and print the selected statistics. Without any statistic flag a short
summary is shown.`,
		Example: `  coalsim simulate -n 20 --theta 5 --tmrca --branch-length
  coalsim simulate -n 50 --theta 10 --seed 7 --frequency
  coalsim simulate -n 8 --theta 2 -o tree.json
  coalsim simulate -i tree.json --sequences`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := model.options(cmd, cfg)

			runner, err := c.newRunner(ctx, cfg, model.noCache || input != "")
			if err != nil {
				return err
			}
			defer runner.Close()

			var res *pipeline.Result
			if input != "" {
				res, err = runner.Load(ctx, input)
			} else {
				res, err = runner.Simulate(ctx, opts)
			}
			if err != nil {
				return err
			}

			if output != "" {
				if err := runner.Save(res, output); err != nil {
					return err
				}
			}

			if !report.any() {
				if !report.quiet {
					printSimulation(res, input, output)
				}
				return nil
			}
			return writeReport(cmd.OutOrStdout(), res, opts.Theta, report)
		},
	}

	model.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "load the genealogy from a tree file instead of simulating")
	cmd.Flags().StringVarP(&output, "output", "o", "", "save the genealogy to a tree file (.json or .json.lz4)")
	cmd.Flags().BoolVar(&report.tmrca, "tmrca", false, "print the time to the most recent common ancestor")
	cmd.Flags().BoolVar(&report.branchLength, "branch-length", false, "print the total branch length")
	cmd.Flags().BoolVar(&report.tij, "tij", false, "print the coalescence time of every leaf pair")
	cmd.Flags().BoolVar(&report.sequences, "sequences", false, "print the binary sequence of every leaf")
	cmd.Flags().BoolVar(&report.frequency, "frequency", false, "print the folded site-frequency spectrum")
	cmd.Flags().BoolVarP(&report.quiet, "quiet", "q", false, "print bare values without labels")
	cmd.Flags().BoolVar(&report.table, "table", false, "print the spectrum as a table")

	return cmd
}

// writeReport prints the selected statistics of res, one block per flag, in
// a line-oriented format suitable for scripts.
//
//	T_MRCA <t>	Branch Length: <l>
//	<T_ij>                  one per leaf pair
//	<0101...>               one per leaf
//	<i>	<sites/n>	<expected>  one per folded bin
func writeReport(w io.Writer, res *pipeline.Result, theta *float64, r reportFlags) error {
	var scalars []string
	if r.tmrca {
		scalars = append(scalars, label(r.quiet, "T_MRCA ", res.Summary.MRCA))
	}
	if r.branchLength {
		scalars = append(scalars, label(r.quiet, "Branch Length: ", res.Summary.BranchLength))
	}
	if len(scalars) > 0 {
		if _, err := fmt.Fprintln(w, strings.Join(scalars, "\t")); err != nil {
			return err
		}
	}

	if r.tij {
		for _, t := range res.PairwiseTimes() {
			if _, err := fmt.Fprintln(w, formatFloat(t)); err != nil {
				return err
			}
		}
	}

	if r.sequences {
		for _, seq := range res.Sequences() {
			if _, err := fmt.Fprintln(w, sfs.FormatVector(seq)); err != nil {
				return err
			}
		}
	}

	if r.frequency {
		rows := sfs.Report(res.Spectrum(), res.Summary.Leaves, theta)
		if r.table {
			_, err := fmt.Fprintln(w, spectrumTable(rows, theta != nil))
			return err
		}
		for _, row := range rows {
			var err error
			if theta != nil {
				_, err = fmt.Fprintf(w, "%d\t%f\t%f\n", row.Count, row.Frequency, row.Expected)
			} else {
				_, err = fmt.Fprintf(w, "%d\t%f\n", row.Count, row.Frequency)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func label(quiet bool, prefix string, v float64) string {
	if quiet {
		return formatFloat(v)
	}
	return prefix + formatFloat(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// printSimulation shows a styled summary of a simulated or loaded genealogy.
func printSimulation(res *pipeline.Result, input, output string) {
	if input != "" {
		printSuccess("Loaded genealogy of %d samples", res.Summary.Leaves)
	} else {
		printSuccess("Simulated genealogy of %d samples", res.Summary.Leaves)
	}
	printStats(res.Summary.Leaves, res.Mutations, res.CacheHit)
	printNewline()

	printKeyValue("T_MRCA", formatFloat(res.Summary.MRCA))
	printKeyValue("Branches", formatFloat(res.Summary.BranchLength))
	if input == "" {
		printKeyValue("Seed", strconv.FormatUint(res.Seed, 10))
	}
	printKeyValue("ID", res.ID)

	if output != "" {
		printNewline()
		printFile(output)
		printNextStep("Draw it", "coalsim render "+output)
	}
}
