package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/mealplan/internal/logger"
)

// CompleteResponse is returned by POST /complete/:day.
type CompleteResponse struct {
	Message          string `json:"message"`
	AlreadyCompleted bool   `json:"already_completed"`
}

func (c *Controller) initCompletionRoutes() {
	c.Echo.GET("/completed_days", c.GetCompletedDays)
	c.Echo.POST("/complete/:day", c.MarkDayComplete, c.writeLimiter)
}

// GetCompletedDays handles GET /completed_days. The body is a JSON array of
// days in ascending order, empty when nothing is completed.
func (c *Controller) GetCompletedDays(ctx echo.Context) error {
	days, err := c.DS.CompletedDays(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to retrieve completed days", http.StatusInternalServerError)
	}
	if days == nil {
		days = []int{}
	}
	return ctx.JSON(http.StatusOK, days)
}

// MarkDayComplete handles POST /complete/:day. Marking a day twice is not an
// error; the second call reports already_completed.
func (c *Controller) MarkDayComplete(ctx echo.Context) error {
	day, ok := parsePositiveParam(ctx.Param("day"))
	if !ok {
		return c.badRequest(ctx, fmt.Sprintf("Invalid day %q: must be a positive integer", ctx.Param("day")))
	}

	created, err := c.DS.MarkDayComplete(ctx.Request().Context(), day)
	if err != nil {
		return c.HandleError(ctx, err, fmt.Sprintf("Failed to mark day %d as completed", day), http.StatusInternalServerError)
	}

	if !created {
		c.logger.Info("Day already marked as completed", logger.Int("day", day))
		return ctx.JSON(http.StatusOK, CompleteResponse{
			Message:          fmt.Sprintf("Day %d was already marked as completed", day),
			AlreadyCompleted: true,
		})
	}

	c.InvalidateMealCache()
	c.logger.Info("Day marked as completed", logger.Int("day", day))

	return ctx.JSON(http.StatusOK, CompleteResponse{
		Message: fmt.Sprintf("Day %d marked as completed", day),
	})
}
