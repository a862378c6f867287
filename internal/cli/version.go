package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/kladia/internal/cli.Version=...".
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/kladia"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kladia version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": Version,
					"module":  modulePath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kladia v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
