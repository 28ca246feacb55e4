package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/importer"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/spreadsheet"
)

// uploadFormField is the multipart part carrying the spreadsheet
const uploadFormField = "file"

// UploadResponse is returned by a successful POST /upload.
type UploadResponse struct {
	Message  string `json:"message"`
	ImportID string `json:"import_id"`
	Rows     int    `json:"rows"`
}

func (c *Controller) initUploadRoutes() {
	c.Echo.POST("/upload", c.UploadMealPlan, c.writeLimiter)
}

// UploadMealPlan handles POST /upload. The sheet replaces the stored plan and
// the spreadsheet at the import path; rejected uploads change nothing.
func (c *Controller) UploadMealPlan(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile(uploadFormField)
	if err != nil {
		return c.badRequest(ctx, "No file uploaded")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, fmt.Sprintf("Error processing file: %v", err), http.StatusInternalServerError)
	}
	defer func() { _ = src.Close() }()

	result, err := c.Importer.ImportUpload(ctx.Request().Context(), fileHeader.Filename, src)
	if err != nil {
		if importer.IsBadInput(err) {
			return c.badRequest(ctx, uploadRejectionMessage(err))
		}
		return c.HandleError(ctx, err, fmt.Sprintf("Error processing file: %v", err), http.StatusInternalServerError)
	}

	c.logger.Info("Meal plan uploaded",
		logger.String("filename", fileHeader.Filename),
		logger.String("import_id", result.ImportID),
		logger.Int("rows", result.Rows))

	return ctx.JSON(http.StatusOK, UploadResponse{
		Message:  "Upload successful",
		ImportID: result.ImportID,
		Rows:     result.Rows,
	})
}

func uploadRejectionMessage(err error) string {
	switch {
	case errors.Is(err, importer.ErrInvalidExtension):
		return "Invalid file format. Please upload an .xlsx file"
	case errors.Is(err, spreadsheet.ErrEmptySheet):
		return "The uploaded spreadsheet contains no meal rows; existing data was kept"
	case errors.Is(err, spreadsheet.ErrMissingDayColumn):
		return "The uploaded spreadsheet has no Day column"
	default:
		return err.Error()
	}
}
