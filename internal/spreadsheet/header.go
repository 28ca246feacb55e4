package spreadsheet

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// field identifies the MealRecord attribute a column maps to
type field int

const (
	fieldUnknown field = iota
	fieldDay
	fieldWeek
	fieldMealType
	fieldPrimaryMeal
	fieldPrimaryRecipe
	fieldAlternateMeal
	fieldAlternateRecipe
)

// column is a resolved header cell
type column struct {
	index    int
	field    field
	position int // alternate position, 1-based, zero for scalar fields
}

var numberedAlternate = regexp.MustCompile(`^alternate (meal|recipe) (\d+)$`)

// normalizeHeader case-folds a header and collapses inner whitespace.
// NFKC maps full-width letters and non-breaking spaces that spreadsheet
// editors sometimes insert to their plain forms.
func normalizeHeader(s string) string {
	// Casers are stateful, one per call
	folded := cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}

// classifyHeader maps a header cell to a field. The legacy "Alternate" and
// "Third Meal" column pairs become alternate positions 1 and 2.
func classifyHeader(raw string) (field, int) {
	switch h := normalizeHeader(raw); h {
	case "day":
		return fieldDay, 0
	case "week":
		return fieldWeek, 0
	case "meal type":
		return fieldMealType, 0
	case "primary meal":
		return fieldPrimaryMeal, 0
	case "primary recipe":
		return fieldPrimaryRecipe, 0
	case "alternate meal":
		return fieldAlternateMeal, 1
	case "alternate recipe":
		return fieldAlternateRecipe, 1
	case "third meal option", "third meal":
		return fieldAlternateMeal, 2
	case "third meal recipe":
		return fieldAlternateRecipe, 2
	default:
		m := numberedAlternate.FindStringSubmatch(h)
		if m == nil {
			return fieldUnknown, 0
		}
		pos, err := strconv.Atoi(m[2])
		if err != nil || pos < 1 {
			return fieldUnknown, 0
		}
		if m[1] == "meal" {
			return fieldAlternateMeal, pos
		}
		return fieldAlternateRecipe, pos
	}
}

// resolveHeader builds the column layout of a header row. When a header
// appears twice the first occurrence wins.
func resolveHeader(cells []string) (cols []column, maxPosition int, hasDay bool) {
	type key struct {
		f   field
		pos int
	}
	seen := make(map[key]bool)

	for i, cell := range cells {
		f, pos := classifyHeader(cell)
		if f == fieldUnknown || seen[key{f, pos}] {
			continue
		}
		seen[key{f, pos}] = true
		cols = append(cols, column{index: i, field: f, position: pos})
		if f == fieldDay {
			hasDay = true
		}
		if pos > maxPosition {
			maxPosition = pos
		}
	}
	return cols, maxPosition, hasDay
}
