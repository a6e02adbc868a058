package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cert-manager/x509chain/internal/certtext"
	"github.com/cert-manager/x509chain/x509chain"
)

func init() {
	register(newParseCommand)
}

func newParseCommand(ctx context.Context, in io.Reader, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>...",
		Short: "parse one or more PEM/DER certificate files and print them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				chain := &x509chain.Chain{}
				result, err := x509chain.ParseFile(chain, path)
				if err != nil {
					fmt.Fprintf(errOut, "%s: %v\n", path, err)
					continue
				}
				if result.Failed > 0 {
					fmt.Fprintf(errOut, "%s: %d of %d PEM blocks failed to parse\n", path, result.Failed, result.Failed+result.Succeeded)
				}
				for crt := chain; crt != nil && crt.Version != 0; crt = crt.Next {
					fmt.Fprint(out, certtext.Certificate(crt, ""))
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
}
