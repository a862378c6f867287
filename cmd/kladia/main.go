// Command kladia runs YAML scripts against an in-memory entity registry.
package main

import (
	"os"

	"github.com/mesh-intelligence/kladia/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
