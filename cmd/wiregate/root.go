package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wiregate",
	Short: "Typed RPC gateway tooling: call remote features, check definitions",
	Long: `Wiregate is a typed RPC façade: features declare their methods with
input/output schemas, a router dispatches validated calls on the server,
and a remote proxy validates and forwards calls on the client.

Serving is done by embedding the bootstrap package in your own binary;
this tool covers the client and authoring side.

Commands:
  wiregate call      # Invoke a method on a remote gateway
  wiregate validate  # Validate feature definition files
  wiregate keys      # Hash API keys for gateway configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "wiregate.yaml", "config file path")
}
