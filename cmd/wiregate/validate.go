package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/wiregate/adapters/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dir-or-file>...",
	Short: "Validate feature definition files",
	Long: `Parse feature definition files and report problems: unknown field
types, enums with no values, features with no methods.

Examples:
  wiregate validate ./features
  wiregate validate crew.yaml missions.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := false

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			features, err := schema.ParseDir(path)
			if err != nil {
				fmt.Printf("✗ %s: %v\n", path, err)
				failed = true
				continue
			}
			for _, f := range features {
				fmt.Printf("✓ %s (%d methods)\n", f.Name(), f.Len())
			}
			continue
		}

		f, err := schema.ParseFile(path)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✓ %s (%d methods)\n", f.Name(), f.Len())
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}
