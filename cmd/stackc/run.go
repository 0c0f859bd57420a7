package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Compile units and evaluate every call on the reference VM",
	RunE: func(cmd *cobra.Command, args []string) error {
		return session(cmd, func(ctx context.Context, cfg *settings) error {
			out, buildErr := buildUnits(ctx, cmd, cfg, args, true)
			if out == nil {
				return buildErr
			}
			w := cmd.OutOrStdout()
			for i := range out.Units {
				ur := &out.Units[i]
				if ur.Result == nil || len(ur.Outcomes) == 0 {
					continue
				}
				if _, err := fmt.Fprintf(w, "unit %s (%s)\n", ur.Result.Unit, ur.Path); err != nil {
					return err
				}
				for _, o := range ur.Outcomes {
					if _, err := fmt.Fprintf(w, "  %s\n", o); err != nil {
						return err
					}
				}
			}
			return buildErr
		})
	},
}
