package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/wiregate/adapters/httpcable"
	"github.com/artpar/wiregate/adapters/schema"
	"github.com/artpar/wiregate/config"
	"github.com/artpar/wiregate/core/proxy"
)

var (
	callEndpoint string
	callAPIKey   string
	callInput    string
	callDefs     string
	callTimeout  time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call <feature> <method>",
	Short: "Invoke a method on a remote gateway",
	Long: `Invoke one feature method on a remote gateway over the HTTP cable.

The input is a JSON value given with --input, either inline or as @file.
When --definitions points at feature definition files, the call goes
through a remote proxy so input and output are schema-validated on the
client; without definitions the raw envelope is sent as-is.

Endpoint and API key default to the cable section of the config file.

Examples:
  wiregate call crew getOfficer --input '{"id":1}'
  wiregate call crew getOfficer --input @officer.json --definitions ./features
  wiregate call missions list --endpoint http://localhost:8080/rpc --key $KEY`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVar(&callEndpoint, "endpoint", "", "gateway endpoint URL (default from config)")
	callCmd.Flags().StringVar(&callAPIKey, "key", "", "API key (default from config)")
	callCmd.Flags().StringVar(&callInput, "input", "{}", "input JSON value, or @file")
	callCmd.Flags().StringVar(&callDefs, "definitions", "", "feature definition directory for client-side validation")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 10*time.Second, "request timeout")
}

func runCall(cmd *cobra.Command, args []string) error {
	featureName, method := args[0], args[1]

	cableCfg := httpcable.Config{
		Endpoint: callEndpoint,
		APIKey:   callAPIKey,
		Timeout:  callTimeout,
	}

	// Fall back to the config file for endpoint and key.
	if cableCfg.Endpoint == "" || cableCfg.APIKey == "" {
		if _, err := os.Stat(cfgFile); err == nil {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cableCfg.Endpoint == "" {
				cableCfg.Endpoint = cfg.Cable.Endpoint
			}
			if cableCfg.APIKey == "" {
				cableCfg.APIKey = cfg.Cable.APIKey
			}
			if cableCfg.Headers == nil {
				cableCfg.Headers = cfg.Cable.Headers
			}
			if callDefs == "" {
				callDefs = cfg.Features.Dir
			}
		}
	}

	input, err := readInput(callInput)
	if err != nil {
		return err
	}

	cable, err := httpcable.New(cableCfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	var result any
	if callDefs != "" {
		result, err = callValidated(ctx, cable, featureName, method, input)
	} else {
		result, err = cable.Call(ctx, featureName, method, input)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// callValidated routes the call through a remote proxy built from the
// feature's definition file, so both sides of the call are schema-checked
// on the client.
func callValidated(ctx context.Context, cable *httpcable.Cable, featureName, method string, input any) (any, error) {
	features, err := schema.ParseDir(callDefs)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	for _, f := range features {
		if f.Name() != featureName {
			continue
		}
		remote, err := proxy.New(f, cable.AsCable())
		if err != nil {
			return nil, err
		}
		return remote.Call(ctx, method, input)
	}
	return nil, fmt.Errorf("feature %q not found in %s", featureName, callDefs)
}

// readInput parses the --input flag: inline JSON, or @file.
func readInput(arg string) (any, error) {
	data := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		var err error
		data, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse input JSON: %w", err)
	}
	return input, nil
}
