package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kladia/internal/script"
)

// stdinArg names standard input as a script source.
const stdinArg = "-"

type scriptResult struct {
	Name  string `json:"name"`
	Steps int    `json:"steps"`
}

func newRunCmd(a *app) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "run <script.yaml>...",
		Short: "Run scripts against one registry",
		Long: `Run parses every script first, then executes them in order against a single
fresh registry. Execution stops at the first failing step. Use - to read a
script from standard input.

Example:
  kladia run build.yaml checks.yaml --dump`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScripts(cmd, args, dump)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print every entity after the scripts finish")
	return cmd
}

func (a *app) runScripts(cmd *cobra.Command, args []string, dump bool) error {
	scripts := make([]*script.Script, 0, len(args))
	for _, arg := range args {
		s, err := readScript(cmd.InOrStdin(), arg)
		if err != nil {
			return err
		}
		scripts = append(scripts, s)
	}

	reg, closeReg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer closeReg()

	// In JSON mode read output is collected and reported as lines.
	out := cmd.OutOrStdout()
	var reads bytes.Buffer
	if a.flags.jsonMode {
		out = &reads
	}

	results := make([]scriptResult, 0, len(scripts))
	for _, s := range scripts {
		if err := script.Run(cmd.Context(), reg, s, out); err != nil {
			return err
		}
		a.logger.Info("script passed", "script", s.Name, "steps", len(s.Steps))
		results = append(results, scriptResult{Name: s.Name, Steps: len(s.Steps)})
	}

	var entries []dumpEntry
	if dump {
		if entries, err = collectDump(cmd.Context(), reg); err != nil {
			return err
		}
	}

	if a.flags.jsonMode {
		report := map[string]any{
			"scripts": results,
			"reads":   splitLines(reads.String()),
		}
		if dump {
			d, err := dumpJSON(entries)
			if err != nil {
				return err
			}
			report["registry"] = d
		}
		return writeJSON(cmd.OutOrStdout(), report)
	}

	if dump {
		if err := writeDumpText(cmd.OutOrStdout(), entries); err != nil {
			return err
		}
	}
	return closeReg()
}

// readScript loads and parses the script at path, or standard input for "-".
func readScript(stdin io.Reader, path string) (*script.Script, error) {
	var (
		data []byte
		err  error
		name = path
	)
	if path == stdinArg {
		name = "stdin"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return script.Parse(name, data)
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
