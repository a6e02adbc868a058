/*
Copyright 2020 The cert-manager Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cert-manager/x509chain/pkg/build"
	"github.com/cert-manager/x509chain/pkg/cmd/commands"
)

type logOptions struct {
	verbosity int
}

func (o *logOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.verbosity, "verbosity", "v", 0, "log verbosity (0=info, 1+=debug)")
}

// NewX509ChainCtlCommand constructs the root command for the x509chainctl
// CLI, wiring each subcommand package registers in pkg/cmd/commands into
// the tree, and installs a go-logr logger (backed by funcr, the
// dependency-free formatter shipped alongside the logr interface itself)
// into the context every subcommand receives.
func NewX509ChainCtlCommand(ctx context.Context, in io.Reader, out, errOut io.Writer) *cobra.Command {
	logOpts := &logOptions{}

	cmds := &cobra.Command{
		Use:   build.Name(ctx),
		Short: "inspect, parse, and verify X.509 certificate chains",
		Long: build.WithTemplate(ctx, `
{{.BuildName}} parses X.509 certificates and CRLs and verifies certificate
chains against a set of locally trusted roots.`),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := funcr.New(func(prefix, args string) {
				if prefix != "" {
					fmt.Fprintf(errOut, "%s %s\n", prefix, args)
					return
				}
				fmt.Fprintln(errOut, args)
			}, funcr.Options{Verbosity: logOpts.verbosity})
			cmd.SetContext(logr.NewContext(cmd.Context(), log))
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmds.SetUsageTemplate(usageTemplate(ctx))
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(errOut)
	cmds.SetContext(ctx)

	logOpts.AddFlags(cmds.PersistentFlags())

	for _, registerCmd := range commands.Commands() {
		cmds.AddCommand(registerCmd(ctx, in, out, errOut))
	}

	return cmds
}

func usageTemplate(ctx context.Context) string {
	name := build.Name(ctx)
	return fmt.Sprintf(`Usage:{{if .Runnable}} %s {{end}}{{if .HasAvailableSubCommands}} %s [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "%s [command] --help" for more information about a command.{{end}}
`, name, name, name)
}
