package cli

import (
	"github.com/spf13/cobra"
)

func newDemoCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Replace all students with demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Students.SeedDemo(cmd.Context()); err != nil {
				return err
			}
			cmd.PrintErrf("loaded %d demo students\n", len(rt.app.Students.List()))
			return nil
		},
	}
}
