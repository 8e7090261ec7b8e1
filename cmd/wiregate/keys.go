package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/wiregate/adapters/hasher"
)

var keysBcryptCost int

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage gateway API keys",
}

var keysHashCmd = &cobra.Command{
	Use:   "hash <key>",
	Short: "Hash an API key for the auth.key_hashes config list",
	Long: `Hash a plaintext API key with bcrypt. Put the printed hash in the
gateway's auth.key_hashes config list; the plaintext goes to the caller.

Example:
  wiregate keys hash wg_live_f3a9...`,
	Args: cobra.ExactArgs(1),
	RunE: runKeysHash,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysHashCmd)

	keysHashCmd.Flags().IntVar(&keysBcryptCost, "cost", 0, "bcrypt cost (0 = default)")
}

func runKeysHash(cmd *cobra.Command, args []string) error {
	h := hasher.NewBcrypt(keysBcryptCost)
	hash, err := h.Hash(args[0])
	if err != nil {
		return fmt.Errorf("hash key: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}
