package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Reads and writes the TOML configuration file. Keys use dotted paths,
for example llm.provider or annotate.workers. Run without a subcommand
to print the file location.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		cmd.Printf("Config file: %s\n", store.Path())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		value, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q is not set", args[0])
		}
		cmd.Printf("%v\n", value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfig()
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		if err := store.Set(args[0], coerceValue(args[1])); err != nil {
			return fmt.Errorf("set %s: %w", args[0], err)
		}
		if err := store.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		cmd.Printf("Set %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// coerceValue turns a command line argument into a typed TOML value so
// numeric and boolean settings round-trip without quoting.
func coerceValue(raw string) any {
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}
