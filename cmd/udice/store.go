package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/udice/internal/catalog"
)

func newStoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "store [set...]",
		Short: "Store catalog die sets in the database",
		Long:  "Store the named catalog sets, or every catalog set when none are named.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sets []*catalog.Set
			if len(args) == 0 {
				reg, err := a.catalog()
				if err != nil {
					return err
				}
				sets = reg.All()
			}
			for _, name := range args {
				s, err := a.set(name)
				if err != nil {
					return err
				}
				sets = append(sets, s)
			}

			ctx := cmd.Context()
			repo, closeRepo, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			out := cmd.OutOrStdout()
			for _, s := range sets {
				id, err := repo.StoreDice(ctx, s.Name, s.Dice)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", id, s.Name)
			}
			return nil
		},
	}
}

func newSetsCommand(a *app) *cobra.Command {
	var showDice bool
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List die sets stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repo, closeRepo, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			sets, err := repo.Sets(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range sets {
				if !showDice {
					fmt.Fprintf(out, "%s\t%s\t%d dice\n", s.ID, s.Name, s.Dice)
					continue
				}
				ds, err := repo.SetDice(ctx, s.ID)
				if err != nil {
					return err
				}
				names := make([]string, len(ds))
				for i, d := range ds {
					names[i] = d.Name()
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", s.ID, s.Name, strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showDice, "dice", "d", false, "list each set's dice")
	return cmd
}
