package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/siwe"
)

func nonceCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "Print a fresh login nonce",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonce, err := siwe.NewNonce(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), nonce)
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "n", siwe.DefaultNonceLength, "Random bytes in the nonce")

	return cmd
}

func messageCmd() *cobra.Command {
	var (
		p         siwe.Params
		expiresIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Build a sign-in message",
		Long: `Build a sign-in message exactly as the server would.

Examples:
  socialpay message --domain localhost --address 0x5aAe...eAed
  socialpay message --domain app.example.com --address 0x5aAe...eAed --expires-in 10m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.Nonce == "" {
				nonce, err := siwe.NewNonce(siwe.DefaultNonceLength)
				if err != nil {
					return err
				}
				p.Nonce = nonce
			}
			now := time.Now()
			if p.IssuedAt == "" {
				p.IssuedAt = siwe.FormatTime(now)
			}
			if expiresIn > 0 {
				p.ExpirationTime = siwe.FormatTime(now.Add(expiresIn))
			}

			msg, err := siwe.Build(p)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Domain, "domain", "", "Domain requesting the sign-in")
	f.StringVar(&p.Address, "address", "", "Wallet address")
	f.StringVar(&p.Statement, "statement", "", "Human readable statement")
	f.StringVar(&p.URI, "uri", "", "Resource URI (default https://{domain})")
	f.StringVar(&p.ChainID, "chain-id", "", "Chain ID (default 1)")
	f.StringVar(&p.Nonce, "nonce", "", "Nonce (default random)")
	f.StringVar(&p.IssuedAt, "issued-at", "", "Issued At timestamp (default now)")
	f.DurationVar(&expiresIn, "expires-in", 0, "Set Expiration Time this far after issuance")
	f.StringSliceVar(&p.Resources, "resource", nil, "Resource URI, repeatable")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func signCmd() *cobra.Command {
	var (
		keyHex string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with personal_sign, for local testing",
		Long: `Sign a message read from --file or stdin with a hex private key.

The key is taken from --key or SOCIALPAY_PRIVATE_KEY. Prints the signer
address and the 0x-prefixed signature.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyHex == "" {
				keyHex = os.Getenv("SOCIALPAY_PRIVATE_KEY")
			}
			if keyHex == "" {
				return fmt.Errorf("a private key is required")
			}
			key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
			if err != nil {
				return fmt.Errorf("invalid private key: %w", err)
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}
			// Messages never end with a newline; editors and shells add one
			msg := strings.TrimSuffix(strings.TrimSuffix(string(raw), "\n"), "\r")

			sig, err := eth.SignPersonal(msg, key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:   %s\n", eth.KeyAddress(key))
			fmt.Fprintf(out, "signature: %s\n", sig)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "Hex private key")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Message file (default stdin)")

	return cmd
}
