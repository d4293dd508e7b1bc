package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/trustkit/pkg/qrcode"
	"github.com/dmitrymomot/trustkit/pkg/totp"
)

type totpFlags struct {
	fs     *pflag.FlagSet
	digits int
	period int
	at     int64
}

func (f *totpFlags) register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.IntVar(&f.digits, "digits", totp.DefaultDigits, "code length (6-10)")
	fs.IntVar(&f.period, "period", totp.DefaultPeriod, "time step in seconds")
	fs.Int64Var(&f.at, "at", 0, "unix time to use instead of now")
}

func (f *totpFlags) options() []totp.Option {
	opts := []totp.Option{totp.WithDigits(f.digits), totp.WithPeriod(f.period)}
	if f.fs != nil && f.fs.Changed("at") {
		opts = append(opts, totp.WithTime(time.Unix(f.at, 0)))
	}
	return opts
}

func runSecret(args []string, _ io.Reader, stdout, stderr io.Writer) error {
	var (
		flags   totpFlags
		account string
		issuer  string
		size    int
		qrPath  string
		qrSize  int
	)
	fs := newFlagSet("secret", stderr)
	flags.register(fs)
	fs.StringVar(&account, "account", "", "account name shown in the authenticator app (required)")
	fs.StringVar(&issuer, "issuer", "", "issuer shown in the authenticator app (required)")
	fs.IntVar(&size, "bytes", totp.DefaultSecretBytes, "secret length in bytes")
	fs.StringVar(&qrPath, "qr", "", "write the provisioning URI as a PNG QR code to this path")
	fs.IntVar(&qrSize, "qr-size", 256, "QR code edge in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if account == "" || issuer == "" {
		return errors.New("--account and --issuer are required")
	}

	secret, err := totp.GenerateSecretN(size)
	if err != nil {
		return fmt.Errorf("generating secret: %w", err)
	}
	uri, err := totp.BuildProvisioningURI(secret, account, issuer, flags.options()...)
	if err != nil {
		return fmt.Errorf("building provisioning URI: %w", err)
	}

	fmt.Fprintf(stdout, "secret: %s\n", totp.FormatForDisplay(secret))
	fmt.Fprintf(stdout, "uri:    %s\n", uri)

	if qrPath != "" {
		png, err := qrcode.Generate(uri, qrcode.WithSize(qrSize))
		if err != nil {
			return fmt.Errorf("rendering QR code: %w", err)
		}
		if err := os.WriteFile(qrPath, png, 0o600); err != nil {
			return fmt.Errorf("writing QR code: %w", err)
		}
		fmt.Fprintf(stdout, "qr:     %s\n", qrPath)
	}
	return nil
}

func runCode(args []string, _ io.Reader, stdout, stderr io.Writer) error {
	var flags totpFlags
	fs := newFlagSet("code", stderr)
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: trustkit code [flags] <secret>")
	}

	secret, err := totp.ParseSecret(fs.Arg(0))
	if err != nil {
		return err
	}
	code, err := totp.GenerateCode(secret, flags.options()...)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, code)
	return nil
}

func runVerify(args []string, _ io.Reader, stdout, stderr io.Writer) error {
	var (
		flags  totpFlags
		window int
	)
	fs := newFlagSet("verify", stderr)
	flags.register(fs)
	fs.IntVar(&window, "window", totp.DefaultWindow, "tolerated clock skew in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: trustkit verify [flags] <secret> <code>")
	}

	secret, err := totp.ParseSecret(fs.Arg(0))
	if err != nil {
		return err
	}
	ok, err := totp.Verify(secret, fs.Arg(1), append(flags.options(), totp.WithWindow(window))...)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("code rejected")
	}
	fmt.Fprintln(stdout, "code accepted")
	return nil
}
