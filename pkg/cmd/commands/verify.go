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
	register(newVerifyCommand)
}

func newVerifyCommand(ctx context.Context, in io.Reader, out, errOut io.Writer) *cobra.Command {
	var rootsPath string
	var crlPath string
	var hostname string
	var enforceKeyUsage string

	cmd := &cobra.Command{
		Use:   "verify <chain-file>",
		Short: "verify a certificate chain against a set of trusted roots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain := &x509chain.Chain{}
			if _, err := x509chain.ParseFile(chain, args[0]); err != nil {
				return err
			}

			opts := x509chain.VerifyOptions{Hostname: hostname}

			if enforceKeyUsage != "" {
				mask, err := x509chain.ParseKeyUsage(enforceKeyUsage)
				if err != nil {
					return fmt.Errorf("parsing --enforce-key-usage: %w", err)
				}
				opts.EnforceKeyUsage = mask
			}

			if rootsPath != "" {
				roots := &x509chain.Chain{}
				if _, err := x509chain.ParseFile(roots, rootsPath); err != nil {
					return fmt.Errorf("loading roots: %w", err)
				}
				opts.Roots = roots
			}

			if crlPath != "" {
				buf, err := os.ReadFile(crlPath)
				if err != nil {
					return fmt.Errorf("loading CRL: %w", err)
				}
				crl := &x509chain.CRL{}
				if err := x509chain.ParseCRL(crl, buf); err != nil {
					return fmt.Errorf("loading CRL: %w", err)
				}
				opts.CRLs = crl
			}

			flags, err := x509chain.Verify(chain, opts)
			fmt.Fprintf(out, "flags: %s\n", flags)
			if err != nil {
				return err
			}
			if flags != 0 {
				return fmt.Errorf("verification reported defects: %s", flags)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootsPath, "roots", "", "PEM file of trusted root certificates")
	cmd.Flags().StringVar(&crlPath, "crl", "", "PEM or DER file of CRLs to consult")
	cmd.Flags().StringVar(&hostname, "hostname", "", "hostname to match against the leaf certificate")
	cmd.Flags().StringVar(&enforceKeyUsage, "enforce-key-usage", "", "comma-separated KeyUsage names the leaf must declare (e.g. digitalSignature,keyEncipherment)")

	return cmd
}
