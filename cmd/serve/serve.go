package serve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/mealplan/internal/api"
	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/importer"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability"
	"github.com/tphakala/mealplan/internal/telemetry"
)

// Command creates the serve command, which runs the startup import and then
// serves the query API until SIGINT or SIGTERM.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the meal plan HTTP service",
		Long:  "Import the spreadsheet at import.path according to import.startup and serve the meal plan API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		panic(err) // flag names are static
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("host", "", "Address to bind the HTTP server to")
	cmd.Flags().StringP("port", "p", "", "Port to listen on")
	cmd.Flags().String("import-startup", "", "Startup import policy (always, ifempty, never)")

	bindings := map[string]string{
		"webserver.host": "host",
		"webserver.port": "port",
		"import.startup": "import-startup",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}

// Run wires the datastore, importer and HTTP server and blocks until shutdown.
func Run(ctx context.Context, settings *conf.Settings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Global().Module("serve")

	if err := telemetry.InitSentry(settings); err != nil {
		log.Warn("Continuing without error telemetry", logger.Error(err))
	}
	defer telemetry.Shutdown()

	server, cleanup, err := newServer(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.StartWithGracefulShutdown(ctx)
}

// newServer opens the datastore, runs the startup import and builds the HTTP
// server around a meal cache the importer flushes. cleanup closes the datastore
// and must run after the server has stopped.
func newServer(ctx context.Context, settings *conf.Settings) (server *api.Server, cleanup func(), err error) {
	log := logger.Global().Module("serve")

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	store := datastore.New(settings)
	if err = store.Open(); err != nil {
		return nil, nil, fmt.Errorf("failed to open datastore: %w", err)
	}
	cleanup = func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close datastore", logger.Error(err))
		}
	}
	store.SetMetrics(metrics.Datastore)

	// uploads and startup imports both invalidate cached query responses
	mealCache := api.NewMealCache(settings.WebServer.CacheTTL)
	imp := importer.New(store, settings,
		importer.WithMetrics(metrics.Importer),
		importer.WithImportHook(func(r importer.Result) {
			mealCache.Flush()
			log.Debug("Meal cache flushed after import", logger.String("import_id", r.ImportID))
		}))

	if result := imp.Startup(ctx); result != nil {
		log.Info("Startup import complete",
			logger.Int("rows", result.Rows),
			logger.String("import_id", result.ImportID))
	}

	server, err = api.New(settings,
		api.WithDataStore(store),
		api.WithImporter(imp),
		api.WithMetrics(metrics),
		api.WithSharedMealCache(mealCache))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return server, cleanup, nil
}
