// Package commands holds the cobra subcommand constructors the root
// command assembles, one file per subcommand, each registering itself
// into Commands() via an init-time register call.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// CommandFunc builds one subcommand, given the context the root command
// was constructed with and the IO streams to read/write through.
type CommandFunc func(ctx context.Context, in io.Reader, out, errOut io.Writer) *cobra.Command

var registry []CommandFunc

func register(fn CommandFunc) { registry = append(registry, fn) }

// Commands returns every registered subcommand constructor.
func Commands() []CommandFunc {
	return registry
}
