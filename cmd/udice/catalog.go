package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/udice/internal/catalog"
	"github.com/cory-johannsen/udice/internal/dice"
)

func newCatalogCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and roll the YAML die sets",
	}
	cmd.AddCommand(
		newCatalogListCommand(a),
		newCatalogRollCommand(a),
		newCatalogExportCommand(a),
	)
	return cmd
}

func newCatalogListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List die sets and their dice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range reg.All() {
				names := make([]string, len(s.Dice))
				for i, d := range s.Dice {
					names[i] = d.Name()
				}
				fmt.Fprintf(out, "%s: %s\n", s.Name, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newCatalogRollCommand(a *app) *cobra.Command {
	var (
		count       int
		dropLowest  int
		dropHighest int
		orderBy     []string
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "roll <set> <die>",
		Short: "Roll a die from a catalog set, optionally as a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.set(args[0])
			if err != nil {
				return err
			}
			d, ok := s.Die(args[1])
			if !ok {
				return fmt.Errorf("set %q: %w %q", s.Name, dice.ErrUnknownDie, args[1])
			}
			units, err := orderUnits(s, orderBy)
			if err != nil {
				return err
			}
			strategy, err := poolStrategy(dropLowest, dropHighest, units)
			if err != nil {
				return err
			}

			var r dice.SubRoller = d
			if count > 1 || strategy.Drops() > 0 {
				if r, err = dice.NewPool(d, count, strategy); err != nil {
					return err
				}
			}
			printRoll(cmd.OutOrStdout(), r, a.roller.Roll(r), quiet)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&count, "count", "n", 1, "number of dice in the pool")
	flags.IntVar(&dropLowest, "drop-lowest", 0, "drop this many of the lowest results")
	flags.IntVar(&dropHighest, "drop-highest", 0, "drop this many of the highest results")
	flags.StringSliceVar(&orderBy, "order-by", nil, "units that rank results for dropping, in priority order")
	flags.BoolVarP(&quiet, "quiet", "q", false, "print only the result")
	return cmd
}

func newCatalogExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <set>",
		Short: "Print a die set as a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.set(args[0])
			if err != nil {
				return err
			}
			doc, err := catalog.Encode(s)
			if err != nil {
				return err
			}
			data, err := doc.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// orderUnits resolves --order-by names against the set's units.
func orderUnits(s *catalog.Set, names []string) ([]dice.Unit, error) {
	units := make([]dice.Unit, 0, len(names))
	for _, name := range names {
		u, ok := s.Unit(name)
		if !ok {
			return nil, fmt.Errorf("set %q: %w %q", s.Name, catalog.ErrUnknownUnit, name)
		}
		units = append(units, u)
	}
	return units, nil
}

func poolStrategy(dropLowest, dropHighest int, orderBy []dice.Unit) (dice.Strategy, error) {
	switch {
	case dropLowest > 0 && dropHighest > 0:
		return dice.Strategy{}, errors.New("--drop-lowest and --drop-highest are mutually exclusive")
	case dropLowest > 0:
		return dice.DropLowest(dropLowest, orderBy...), nil
	case dropHighest > 0:
		return dice.DropHighest(dropHighest, orderBy...), nil
	default:
		return dice.KeepAll(), nil
	}
}
