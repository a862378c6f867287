package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kladia/internal/paths"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

const configHeader = "# kladia configuration. KLADIA_* variables and flags override these values.\n"

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long: `Create the configuration directory and write config.yaml holding the
effective configuration. An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.yaml")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, force bool) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	path := paths.ConfigFile(a.configDir)
	written, err := writeConfig(path, a.cfg, force)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}
	a.logger.Info("init", "path", path, "written", written)

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"config":  path,
			"written": written,
		})
	}
	if written {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration written to", path)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration already exists at", path)
	}
	return nil
}

// writeConfig marshals cfg to path. It reports false without writing when the
// file exists and force is unset.
func writeConfig(path string, cfg types.Config, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
