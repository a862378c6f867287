package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kladia/internal/script"
)

func newSelfTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in graph construction scenario",
		Long: `Selftest builds graph g over nodes A, B and C, arrows (A, B) and (B, B)
and link X, checks every write with a read, then deletes A and X.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, closeReg, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer closeReg()

			s := script.SelfTest()
			if err := script.Run(cmd.Context(), reg, s, io.Discard); err != nil {
				return sysError(fmt.Errorf("selftest: %w", err))
			}

			if a.flags.jsonMode {
				if err := writeJSON(cmd.OutOrStdout(), map[string]any{
					"status":   "pass",
					"steps":    len(s.Steps),
					"backend":  a.cfg.Backend,
					"registry": reg.ID(),
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), script.SelfTestPassed)
			}
			return closeReg()
		},
	}
}
