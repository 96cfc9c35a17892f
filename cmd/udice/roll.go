package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/udice/internal/dice"
)

func newRollCommand(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "roll <expr> [expr...]",
		Short: "Roll one or more dice expressions",
		Long: `Roll dice expressions such as d20, 2d6+3, 4d6kh3 or 3dFate.

Named dice are looked up in the catalog; qualify them as "Warhammer/Challenge"
when two sets share a die name. Several expressions are rolled together and numbered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.buildRoller(args)
			if err != nil {
				return err
			}
			printRoll(cmd.OutOrStdout(), r, a.roller.Roll(r), quiet)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the result")
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	var runs int
	cmd := &cobra.Command{
		Use:   "stats <expr>",
		Short: "Roll an expression many times and summarize the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.buildExpr(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("runs") {
				runs = a.cfg.Rolling.StatsRuns
			}
			result, err := a.roller.Stats(r, runs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, r.Description())
			fmt.Fprint(out, result.FinalResult())
			return nil
		},
	}
	cmd.Flags().IntVarP(&runs, "runs", "n", 0, "number of rolls (default from rolling.stats_runs)")
	return cmd
}

// buildRoller builds one roller, or a numbered MultiRoller for several
// expressions.
func (a *app) buildRoller(exprs []string) (dice.Roller, error) {
	if len(exprs) == 1 {
		return a.buildExpr(exprs[0])
	}
	entries := make([]dice.NamedRoller, len(exprs))
	for i, expr := range exprs {
		r, err := a.buildExpr(expr)
		if err != nil {
			return nil, err
		}
		entries[i] = dice.Numbered(r)
	}
	return dice.NewMulti(entries...), nil
}

// buildExpr parses expr, loading the catalog only when it names a die.
func (a *app) buildExpr(expr string) (dice.SubRoller, error) {
	e, err := dice.Parse(expr)
	if err != nil {
		return nil, err
	}
	var resolve dice.DieResolver
	if e.DieName != "" {
		reg, err := a.catalog()
		if err != nil {
			return nil, err
		}
		resolve = reg.Resolver()
	}
	return e.Build(resolve)
}

func printRoll(w io.Writer, r dice.Roller, result dice.Roll, quiet bool) {
	if quiet {
		fmt.Fprintln(w, result.FinalResult())
		return
	}
	fmt.Fprintln(w, r.Description())
	fmt.Fprintln(w, result.IntermediateResults())
	if _, single := r.(dice.SubRoller); single {
		fmt.Fprintln(w, "=", result.FinalResult())
		return
	}
	fmt.Fprintln(w, result.FinalResult())
}
