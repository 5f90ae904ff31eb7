package main

import (
	"errors"
	"fmt"

	"github.com/matsen/membank/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set global configuration values",
	Long: `Get or set values in the global config file
($XDG_CONFIG_HOME/mem/config.yml, default ~/.config/mem/config.yml).

Usage:
  mem config                              # Show all config
  mem config query-limit                  # Get specific value
  mem config store-path ~/notes/mem.json  # Set value

Keys:
  store-path         Store file used when --store is not given
  default-namespace  Namespace for store/get/delete without -n
  query-limit        Default --limit for query
  cleanup-days       Default --days for cleanup

An empty value means the built-in default is used.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys {
				v, _ := cfg.Get(key)
				fmt.Printf("%-18s %s\n", key+":", v)
			}
		} else {
			outputJSON(configValues(cfg))
		}
		return nil
	}

	key := config.NormalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		code := ExitError
		if errors.Is(err, config.ErrInvalidValue) {
			code = ExitConfigError
		}
		exitWithError(code, "%v", err)
	}

	if err := cfg.Save(); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}
	return nil
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// configValues returns every key with its stored value.
func configValues(cfg *config.GlobalConfig) map[string]string {
	values := make(map[string]string, len(config.Keys))
	for _, key := range config.Keys {
		v, _ := cfg.Get(key)
		values[key] = v
	}
	return values
}
