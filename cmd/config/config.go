package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/mealplan/internal/conf"
)

const redacted = "********"

// Command creates the config command, which prints the effective settings
// as YAML or writes them to a file.
func Command(settings *conf.Settings) *cobra.Command {
	var defaults bool
	var savePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after merging defaults, config file, environment and flags. Secrets are redacted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				fmt.Fprint(cmd.OutOrStdout(), conf.DefaultConfigYAML())
				return nil
			}

			if savePath != "" {
				if err := conf.SaveYAMLConfig(savePath, settings); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", savePath)
				return nil
			}

			data, err := yaml.Marshal(Redact(settings))
			if err != nil {
				return fmt.Errorf("error marshaling settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print the built-in default config.yaml")
	cmd.Flags().StringVar(&savePath, "save", "", "Write the effective configuration to this path")

	return cmd
}

// Redact returns a copy of settings with credentials masked.
func Redact(settings *conf.Settings) conf.Settings {
	out := *settings
	if out.Database.MySQL.Password != "" {
		out.Database.MySQL.Password = redacted
	}
	if out.Telemetry.DSN != "" {
		out.Telemetry.DSN = redacted
	}
	return out
}
