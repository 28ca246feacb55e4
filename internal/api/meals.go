package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/logger"
)

// AlternateView is one alternate meal option of a MealView.
type AlternateView struct {
	Meal   *string `json:"meal"`
	Recipe *string `json:"recipe"`
}

// MealView is the public projection of a stored meal row.
type MealView struct {
	ID            uint            `json:"id"`
	Day           int             `json:"day"`
	Week          *int            `json:"week"`
	MealType      *string         `json:"meal_type"`
	PrimaryMeal   *string         `json:"primary_meal"`
	PrimaryRecipe *string         `json:"primary_recipe"`
	Alternates    []AlternateView `json:"alternates"`
	Image         string          `json:"image,omitempty"`
}

// MealsResponse is returned by the meal query endpoints.
type MealsResponse struct {
	Meals     []MealView `json:"meals"`
	Completed bool       `json:"completed"`
	Message   string     `json:"message,omitempty"`
}

func (c *Controller) initMealRoutes() {
	c.Echo.GET("/meals/:day", c.GetMealsForDay)
	c.Echo.GET("/meals/:week/:day", c.GetMealsForWeekDay)
	c.Echo.GET("/has_data", c.HasData)
}

// GetMealsForDay handles GET /meals/:day
func (c *Controller) GetMealsForDay(ctx echo.Context) error {
	day, ok := parsePositiveParam(ctx.Param("day"))
	if !ok {
		return c.badRequest(ctx, fmt.Sprintf("Invalid day %q: must be a positive integer", ctx.Param("day")))
	}
	return c.respondMeals(ctx, datastore.MealFilter{Day: day})
}

// GetMealsForWeekDay handles GET /meals/:week/:day
func (c *Controller) GetMealsForWeekDay(ctx echo.Context) error {
	week, ok := parsePositiveParam(ctx.Param("week"))
	if !ok {
		return c.badRequest(ctx, fmt.Sprintf("Invalid week %q: must be a positive integer", ctx.Param("week")))
	}
	day, ok := parsePositiveParam(ctx.Param("day"))
	if !ok {
		return c.badRequest(ctx, fmt.Sprintf("Invalid day %q: must be a positive integer", ctx.Param("day")))
	}
	return c.respondMeals(ctx, datastore.MealFilter{Day: day, Week: &week})
}

// HasData handles GET /has_data
func (c *Controller) HasData(ctx echo.Context) error {
	hasData, err := c.DS.HasData(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check for meal data", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"has_data": hasData})
}

func (c *Controller) respondMeals(ctx echo.Context, filter datastore.MealFilter) error {
	key := mealCacheKey(filter)
	if cached, found := c.mealCache.Get(key); found {
		c.recordCacheLookup(true)
		return ctx.JSON(http.StatusOK, cached)
	}
	c.recordCacheLookup(false)

	// Loads are shared per cache generation, so a request arriving after a
	// flush never joins a load that started before the write.
	gen := c.mealCache.Generation()
	flight := fmt.Sprintf("%s@%d", key, gen)

	// The shared load must outlive any single caller's request.
	loadCtx := context.WithoutCancel(ctx.Request().Context())

	resp, err, _ := c.mealLoads.Do(flight, func() (any, error) {
		return c.loadMeals(loadCtx, key, gen, filter)
	})
	if err != nil {
		return c.HandleError(ctx, err, "Failed to retrieve meals", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// loadMeals reads meals and completion status from the store and caches the
// response unless the cache was flushed while reading.
func (c *Controller) loadMeals(ctx context.Context, key string, gen uint64, filter datastore.MealFilter) (MealsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, mealLoadTimeout)
	defer cancel()

	records, err := c.DS.GetMeals(ctx, filter)
	if err != nil {
		return MealsResponse{}, err
	}

	completed, err := c.DS.IsDayComplete(ctx, filter.Day)
	if err != nil {
		return MealsResponse{}, err
	}

	resp := MealsResponse{
		Meals:     make([]MealView, 0, len(records)),
		Completed: completed,
	}
	for i := range records {
		resp.Meals = append(resp.Meals, c.toMealView(&records[i]))
	}
	if len(resp.Meals) == 0 {
		resp.Message = fmt.Sprintf("No meals found for day %d", filter.Day)
	}

	cached := c.mealCache.SetIfCurrent(key, resp, gen)
	c.logger.Debug("Loaded meals from datastore",
		logger.String("key", key),
		logger.Int("count", len(resp.Meals)),
		logger.Bool("completed", completed),
		logger.Bool("cached", cached))

	return resp, nil
}

func (c *Controller) toMealView(rec *datastore.MealRecord) MealView {
	view := MealView{
		ID:            rec.ID,
		Day:           rec.Day,
		Week:          rec.Week,
		MealType:      rec.MealType,
		PrimaryMeal:   rec.PrimaryMeal,
		PrimaryRecipe: rec.PrimaryRecipe,
		Alternates:    make([]AlternateView, 0, len(rec.Alternates)),
		Image:         c.imageURL(rec.ID),
	}
	for _, alt := range rec.Alternates {
		view.Alternates = append(view.Alternates, AlternateView{Meal: alt.Meal, Recipe: alt.Recipe})
	}
	return view
}

// imageURL derives a display image from the record id; empty when images are disabled.
func (c *Controller) imageURL(id uint) string {
	images := c.Settings.Images
	if !images.Enabled || images.URLTemplate == "" {
		return ""
	}
	return fmt.Sprintf(images.URLTemplate, id)
}

func (c *Controller) recordCacheLookup(hit bool) {
	if c.metrics != nil && c.metrics.HTTP != nil {
		c.metrics.HTTP.RecordCacheLookup(hit)
	}
}

func mealCacheKey(filter datastore.MealFilter) string {
	if filter.Week == nil {
		return fmt.Sprintf("meals:day:%d", filter.Day)
	}
	return fmt.Sprintf("meals:week:%d:day:%d", *filter.Week, filter.Day)
}

// parsePositiveParam parses a path parameter that must be an integer >= 1.
func parsePositiveParam(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
