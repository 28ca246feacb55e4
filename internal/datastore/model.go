// model.go this code defines the data model for the application
package datastore

import "time"

// MealRecord is one meal plan entry for a day, and optionally a week.
// Day comes from the sheet, never from the row position.
type MealRecord struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Day           int             `gorm:"not null;index:idx_meals_week_day,priority:2" json:"day"`
	Week          *int            `gorm:"index:idx_meals_week_day,priority:1" json:"week"`
	MealType      *string         `gorm:"size:255" json:"meal_type"`
	PrimaryMeal   *string         `gorm:"size:255" json:"primary_meal"`
	PrimaryRecipe *string         `gorm:"type:text" json:"primary_recipe"`
	Alternates    []MealAlternate `gorm:"foreignKey:MealRecordID;constraint:OnDelete:CASCADE" json:"alternates"`
}

// TableName overrides the gorm default
func (MealRecord) TableName() string {
	return "meals"
}

// MealAlternate is one alternate meal and recipe pair of a MealRecord.
// Position is 1-based and orders the alternates.
type MealAlternate struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	MealRecordID uint    `gorm:"not null;index" json:"-"`
	Position     int     `gorm:"not null" json:"position"`
	Meal         *string `gorm:"size:255" json:"meal"`
	Recipe       *string `gorm:"type:text" json:"recipe"`
}

// TableName overrides the gorm default
func (MealAlternate) TableName() string {
	return "meal_alternates"
}

// CompletedDay marks a day of the plan as done. Rows are insert-only.
type CompletedDay struct {
	Day       int       `gorm:"primaryKey;autoIncrement:false" json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the gorm default
func (CompletedDay) TableName() string {
	return "completed_days"
}

// MealFilter selects meals by day and, when Week is set, by week.
type MealFilter struct {
	Day  int
	Week *int // nil matches any week
}

// Alternate returns the alternate at the 1-based position, or nil.
func (m *MealRecord) Alternate(position int) *MealAlternate {
	for i := range m.Alternates {
		if m.Alternates[i].Position == position {
			return &m.Alternates[i]
		}
	}
	return nil
}
