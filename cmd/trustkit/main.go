// Command trustkit is a local helper for the totp and webhook packages:
// enroll and check authenticator codes, and produce signed webhook requests
// for testing receivers.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	summary string
	run     func(args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"secret": {"Generate a TOTP secret with its provisioning URI", runSecret},
	"code":   {"Print the current code for a base32 secret", runCode},
	"verify": {"Check a code against a base32 secret", runVerify},
	"keygen": {"Generate an ECDSA P-256 signing key", runKeygen},
	"sign":   {"Sign a webhook body and optionally deliver it", runSign},
}

var commandOrder = []string{"secret", "code", "verify", "keygen", "sign"}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errors.New("subcommand required")
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown subcommand: %q", args[0])
	}
	err := cmd.run(args[1:], stdin, stdout, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: trustkit <subcommand> [flags]\n\nSubcommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nRun 'trustkit <subcommand> --help' for subcommand flags.\n")
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("trustkit "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
