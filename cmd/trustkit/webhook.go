package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

func runKeygen(args []string, _ io.Reader, stdout, stderr io.Writer) error {
	var out string
	fs := newFlagSet("keygen", stderr)
	fs.StringVarP(&out, "out", "o", "", "write the private key PEM to this path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if out == "" {
		return errors.New("--out is required")
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}
	privPEM, err := webhook.EncodePrivateKey(priv)
	if err != nil {
		return err
	}
	pubPEM, err := webhook.EncodePublicKey(&priv.PublicKey)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(privPEM), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	fmt.Fprint(stdout, pubPEM)
	return nil
}

func runSign(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		keyPath  string
		kid      string
		digest   string
		data     string
		target   string
		header   string
		retries  int
		interval time.Duration
	)
	fs := newFlagSet("sign", stderr)
	fs.StringVarP(&keyPath, "key", "k", "", "PEM private key path (required)")
	fs.StringVar(&kid, "kid", "", "key id placed in the header (required)")
	fs.StringVar(&digest, "digest", webhook.DigestSHA1, "SHA1 or SHA256")
	fs.StringVarP(&data, "data", "d", "", "body to sign; read from stdin when empty")
	fs.StringVar(&target, "send", "", "POST the signed body to this URL")
	fs.StringVar(&header, "header", webhook.DefaultSignatureHeader, "signature header used with --send")
	fs.IntVar(&retries, "retries", 0, "delivery retries with --send")
	fs.DurationVar(&interval, "retry-interval", time.Second, "initial delay between delivery retries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if keyPath == "" || kid == "" {
		return errors.New("--key and --kid are required")
	}

	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("reading private key: %w", err)
	}
	priv, err := webhook.ParsePrivateKey(string(raw))
	if err != nil {
		return err
	}

	body := []byte(data)
	if data == "" {
		if body, err = io.ReadAll(stdin); err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
	}

	if target == "" {
		signature, err := webhook.Sign(priv, kid, body, strings.ToUpper(digest))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, signature)
		return nil
	}

	sender, err := webhook.NewSender(priv, kid,
		webhook.WithSenderDigest(strings.ToUpper(digest)),
		webhook.WithSenderHeader(header),
		webhook.WithRetries(retries, interval),
		webhook.WithOnDelivery(func(r webhook.DeliveryResult) {
			fmt.Fprintf(stdout, "attempt %d: status %d in %s\n", r.Attempt, r.StatusCode, r.Duration.Round(time.Millisecond))
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return sender.Send(ctx, target, body)
}
