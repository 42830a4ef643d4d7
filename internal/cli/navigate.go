package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"arbor.dev/arbor/internal/actions"
	"arbor.dev/arbor/internal/cli/helpers"
	"arbor.dev/arbor/internal/runtime"
)

// newPrevCmd creates the prev command
func newPrevCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prev [count]",
		Short: "Check out the parent of the current commit",
		Long: `Check out the commit one generation down, following first parents. An
optional count moves several generations at once.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := stepCount(args)
			if err != nil {
				return err
			}
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.PrevAction(ctx, n)
			})
		},
	}
}

// newNextCmd creates the next command
func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next [count]",
		Short: "Check out the child of the current commit",
		Long: `Check out the commit one generation up. Each step must have exactly one
visible child; when several exist, the candidates are listed so you can check
one out explicitly.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := stepCount(args)
			if err != nil {
				return err
			}
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.NextAction(ctx, n)
			})
		},
	}
}

func stepCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q: expected a positive number", args[0])
	}
	return n, nil
}
