package api

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
)

// FileStatusResponse describes the spreadsheet at the import path.
type FileStatusResponse struct {
	Exists   bool   `json:"exists"`
	Path     string `json:"path"`
	Size     int64  `json:"size,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// initDebugRoutes is only called when webserver.debugroutes is enabled.
func (c *Controller) initDebugRoutes() {
	c.Echo.GET("/debug/meals", c.DebugMeals)
	c.Echo.GET("/debug/file_exists", c.DebugFileExists)
}

// DebugMeals handles GET /debug/meals, dumping every stored row uncached.
func (c *Controller) DebugMeals(ctx echo.Context) error {
	records, err := c.DS.AllMeals(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to retrieve meals", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, records)
}

// DebugFileExists handles GET /debug/file_exists
func (c *Controller) DebugFileExists(ctx echo.Context) error {
	path := c.Importer.Path()
	resp := FileStatusResponse{Path: path}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		resp.Exists = true
		resp.Size = info.Size()
		resp.Modified = info.ModTime().Format(time.RFC3339)
	case !os.IsNotExist(err):
		return c.HandleError(ctx, err, "Failed to check spreadsheet file", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, resp)
}
