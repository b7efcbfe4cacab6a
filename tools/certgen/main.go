// Package main generates a self-signed server certificate for running
// GophTweeter over HTTPS locally. Point TLS_CERT and TLS_KEY at the output.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/GophTweeter/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args, writes the key pair and prints the env lines to use it.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	validFor := fs.Duration("valid-for", 365*24*time.Hour, "certificate lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	certPEM, keyPEM, err := certgen.GenerateSelfSigned(strings.Split(*hosts, ","), *validFor)
	if err != nil {
		return fmt.Errorf("generate certificate: %w", err)
	}
	certPath, keyPath, err := certgen.WriteKeyPair(*dir, certPEM, keyPEM)
	if err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}

	_, err = fmt.Fprintf(out, "TLS_CERT=%s\nTLS_KEY=%s\n", certPath, keyPath)
	return err
}
