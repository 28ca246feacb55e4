package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/tphakala/mealplan/cmd/config"
	"github.com/tphakala/mealplan/cmd/importplan"
	"github.com/tphakala/mealplan/cmd/serve"
	"github.com/tphakala/mealplan/internal/buildinfo"
	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/logger"
)

// RootCommand creates and returns the root command. Running it without a
// subcommand starts the server.
func RootCommand(info *buildinfo.Context) *cobra.Command {
	// Subcommands share this instance; it is filled in before any of them runs.
	settings := &conf.Settings{}
	var configFile string
	var centralLogger *logger.CentralLogger

	rootCmd := &cobra.Command{
		Use:          "mealplan",
		Short:        "Meal plan spreadsheet importer and query service",
		Version:      info.String(),
		SilenceUsage: true,
	}

	if err := setupFlags(rootCmd, &configFile); err != nil {
		panic(err) // flag names are static
	}

	serveCmd := serve.Command(settings)
	importCmd := importplan.Command(settings)
	configCmd := configcmd.Command(settings)

	rootCmd.AddCommand(serveCmd, importCmd, configCmd)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.LoadFile(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded
		settings.Version = info.Version()
		settings.BuildDate = info.BuildDate()

		// config only prints settings, keep it free of log files
		if cmd.Name() == configCmd.Name() {
			return nil
		}

		centralLogger, err = initialize(settings)
		return err
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if centralLogger == nil {
			return nil
		}
		return centralLogger.Close()
	}

	return rootCmd
}

// initialize sets up the process-wide logger from settings
func initialize(settings *conf.Settings) (*logger.CentralLogger, error) {
	centralLogger, err := logger.NewCentralLogger(settings.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(centralLogger)

	logger.Global().Module("main").Info("Starting mealplan",
		logger.String("version", settings.Version),
		logger.String("build_date", settings.BuildDate),
		logger.String("database", settings.Database.Type))

	return centralLogger, nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	rootCmd.PersistentFlags().StringVarP(configFile, "config", "c", "", "Path to config file (default: ./config.yaml, ~/.config/mealplan/config.yaml, /etc/mealplan/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
