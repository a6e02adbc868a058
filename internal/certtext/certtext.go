// Package certtext renders a parsed certificate as the multi-line
// human-readable summary x509_crt_info produces: version, serial,
// issuer/subject RDNs, validity window, key usage, and extended key usage
// names. It exists purely as a diagnostic aid for the CLI and tests.
package certtext

import (
	"fmt"
	"strings"

	"github.com/cert-manager/x509chain/internal/oid"
	"github.com/cert-manager/x509chain/x509chain"
)

// Certificate renders crt in the style of x509_crt_info: one field per
// line, prefixed by indent.
func Certificate(crt *x509chain.Certificate, indent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%scert. version     : %d\n", indent, crt.Version)
	fmt.Fprintf(&b, "%sserial number     : %s\n", indent, hexJoin(crt.Serial))
	fmt.Fprintf(&b, "%sissuer name       : %s\n", indent, dn(crt.Issuer))
	fmt.Fprintf(&b, "%ssubject name      : %s\n", indent, dn(crt.Subject))
	fmt.Fprintf(&b, "%sissued  on        : %s\n", indent, crt.NotBefore.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%sexpires on        : %s\n", indent, crt.NotAfter.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%ssigned using      : %s\n", indent, crt.SigAlg.Name)

	if crt.ExtTypes&x509chain.ExtBasicConstraints != 0 {
		fmt.Fprintf(&b, "%sbasic constraints : CA=%t", indent, crt.CAIsTrue)
		if crt.MaxPathLen > 0 {
			fmt.Fprintf(&b, ", max_pathlen=%d", crt.MaxPathLen-1)
		}
		b.WriteByte('\n')
	}

	if crt.ExtTypes&x509chain.ExtSubjectAltName != 0 {
		names := make([]string, len(crt.SubjectAltNames))
		for i, n := range crt.SubjectAltNames {
			names[i] = string(n)
		}
		fmt.Fprintf(&b, "%ssubject alt name  : %s\n", indent, strings.Join(names, ", "))
	}

	if crt.ExtTypes&x509chain.ExtKeyUsage != 0 {
		fmt.Fprintf(&b, "%skey usage         : %s\n", indent, keyUsageNames(crt.KeyUsage))
	}

	if crt.ExtTypes&x509chain.ExtExtendedKeyUsage != 0 {
		names := make([]string, len(crt.ExtKeyUsage))
		for i, id := range crt.ExtKeyUsage {
			names[i] = oid.ExtKeyUsageName(id)
		}
		fmt.Fprintf(&b, "%sext key usage     : %s\n", indent, strings.Join(names, ", "))
	}

	return b.String()
}

func hexJoin(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, ":")
}

func dn(atoms []x509chain.RDNAtom) string {
	if len(atoms) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = fmt.Sprintf("%s=%s", attrShortName(a.OID), a.Value)
	}
	return strings.Join(parts, ", ")
}

var shortNames = map[string]string{
	string(oid.OIDCommonName): "CN",
}

func attrShortName(id oid.OID) string {
	if name, ok := shortNames[string(id)]; ok {
		return name
	}
	return "OID"
}

func keyUsageNames(mask uint8) string {
	names := []struct {
		bit  uint8
		name string
	}{
		{x509chain.KeyUsageDigitalSignature, "Digital Signature"},
		{x509chain.KeyUsageNonRepudiation, "Non Repudiation"},
		{x509chain.KeyUsageKeyEncipherment, "Key Encipherment"},
		{x509chain.KeyUsageDataEncipherment, "Data Encipherment"},
		{x509chain.KeyUsageKeyAgreement, "Key Agreement"},
		{x509chain.KeyUsageKeyCertSign, "Key Cert Sign"},
		{x509chain.KeyUsageCRLSign, "CRL Sign"},
	}
	var out []string
	for _, n := range names {
		if mask&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return strings.Join(out, ", ")
}
