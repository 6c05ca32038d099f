package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dl-alexandre/gdm/internal/config"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Commands for managing gdm configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current configuration settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Use 'config show' to see available keys",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long:  "Reset all configuration settings to their default values",
	RunE:  runConfigReset,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := config.Load()
	if err != nil {
		return out.WriteError("config.show", utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
	}

	return out.WriteSuccess("config.show", cfg)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	key := args[0]
	value := args[1]

	cfg, err := config.Load()
	if err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
	}

	switch strings.ToLower(key) {
	case "defaultprofile":
		cfg.DefaultProfile = value
	case "defaultoutputformat":
		if value != string(types.OutputFormatJSON) && value != string(types.OutputFormatTable) {
			return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid output format: %s (must be 'json' or 'table')", value)).Build())
		}
		cfg.DefaultOutputFormat = types.OutputFormat(value)
	case "clientsecretpath":
		cfg.ClientSecretPath = value
	case "maxretries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid number: %s", value)).Build())
		}
		cfg.MaxRetries = retries
	case "retrybasedelay":
		delay, err := strconv.Atoi(value)
		if err != nil {
			return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("invalid number: %s", value)).Build())
		}
		cfg.RetryBaseDelay = delay
	case "loglevel":
		cfg.LogLevel = value
	case "coloroutput":
		cfg.ColorOutput = value == "true" || value == "1" || value == "yes"
	default:
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("unknown configuration key: %s", key)).Build())
	}

	if err := cfg.Save(); err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
	}

	return out.WriteSuccess("config.set", map[string]string{"key": key, "value": value})
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg := config.DefaultConfig()
	if err := cfg.Save(); err != nil {
		return out.WriteError("config.reset", utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
	}

	return out.WriteSuccess("config.reset", cfg)
}
