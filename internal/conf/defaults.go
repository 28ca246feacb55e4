// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", "5000")
	viper.SetDefault("webserver.debugroutes", true)
	viper.SetDefault("webserver.uploadlimit", "10M")
	viper.SetDefault("webserver.shutdowntimeout", 10*time.Second)
	viper.SetDefault("webserver.cachettl", 5*time.Minute)

	viper.SetDefault("database.type", DatabaseSQLite)
	viper.SetDefault("database.sqlite.path", "data/meals.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.mysql.username", "mealplan")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "mealplan")

	viper.SetDefault("import.path", "data/meal_plan.xlsx")
	viper.SetDefault("import.startup", StartupImportAlways)

	viper.SetDefault("images.enabled", true)
	viper.SetDefault("images.urltemplate", "https://picsum.photos/seed/meal-%d/400/300")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console", true)
	viper.SetDefault("logging.file.enabled", true)
	viper.SetDefault("logging.file.path", "logs/mealplan.log")
	viper.SetDefault("logging.file.level", "info")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")
	viper.SetDefault("telemetry.environment", "production")
	viper.SetDefault("telemetry.samplerate", 1.0)

	viper.SetDefault("metrics.enabled", true)
}
