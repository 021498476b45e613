package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "socialpay",
		Short: "Wallet sign-in and social payment gateway",
		Long: `socialpay serves wallet sign-in (EIP-4361 style messages signed with
personal_sign), stateless session cookies, and read-only lookups against
the SocialLinking contract.

Configuration is read from the environment, see "socialpay serve --help".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		nonceCmd(),
		messageCmd(),
		signCmd(),
	)

	return root
}
