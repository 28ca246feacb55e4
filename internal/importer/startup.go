package importer

import (
	"context"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/spreadsheet"
)

// Startup applies the import.startup policy. It never fails the caller:
// problems are logged and the server keeps serving whatever is stored.
// The result is nil when nothing was imported.
func (i *Importer) Startup(ctx context.Context) *Result {
	policy := i.settings.Import.Startup
	log := i.log.With(logger.String("policy", policy), logger.String("path", i.Path()))

	switch policy {
	case conf.StartupImportNever:
		log.Info("Startup import disabled")
		return nil
	case conf.StartupImportIfEmpty:
		hasData, err := i.store.HasData(ctx)
		if err != nil {
			log.Error("Failed to check for existing meal plan, skipping startup import", logger.Error(err))
			return nil
		}
		if hasData {
			log.Info("Meal plan already stored, skipping startup import")
			return nil
		}
	}

	result, err := i.ImportFile(ctx, "")
	switch {
	case err == nil:
		return result
	case errors.Is(err, ErrSourceMissing):
		log.Info("No spreadsheet at import path, starting with stored data")
	case errors.Is(err, spreadsheet.ErrEmptySheet):
		log.Warn("Startup spreadsheet is empty, starting with stored data")
	default:
		log.Error("Startup import failed, starting with stored data", logger.Error(err))
	}
	return nil
}
