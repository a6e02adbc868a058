package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cert-manager/x509chain/x509chain"
)

func init() {
	register(newCRLCommand)
}

func newCRLCommand(ctx context.Context, in io.Reader, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "crl <file>",
		Short: "parse a CRL and list its revoked serial numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			crl := &x509chain.CRL{}
			if err := x509chain.ParseCRL(crl, buf); err != nil {
				return err
			}

			for c := crl; c != nil; c = c.Next {
				fmt.Fprintf(out, "this update : %s\n", c.ThisUpdate.Format("2006-01-02 15:04:05"))
				if !c.NextUpdate.IsZero() {
					fmt.Fprintf(out, "next update : %s\n", c.NextUpdate.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(out, "revoked     : %d entries\n", len(c.Revoked))
				for _, r := range c.Revoked {
					fmt.Fprintf(out, "  %x  revoked %s\n", r.Serial, r.RevocationDate.Format("2006-01-02"))
				}
			}
			return nil
		},
	}
}
