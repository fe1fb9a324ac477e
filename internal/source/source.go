// Package source is the event store adapter: it loads raw calendar data and
// normalizes it into model events. It sits outside the engine boundary; the
// aggregation and filtering packages never import it.
package source

import (
	"strings"

	"calshare/internal/model"
)

// Source describes one calendar source. URL may be an http(s) endpoint or a
// local file path.
type Source struct {
	ID   string
	Name string
	URL  string
	// Owner is attributed as CreatedBy on every event from this source.
	Owner model.UserRef
}

// CategoryTable resolves raw category strings from a feed against the
// configured category set.
type CategoryTable struct {
	byKey   map[string]model.Category
	defCat  model.Category
	freeCat model.Category
}

// NewCategoryTable indexes categories by lowercased id and name. The default
// category is the first non-free entry; feeds with unknown or missing
// categories resolve to it.
func NewCategoryTable(cats []model.Category) CategoryTable {
	t := CategoryTable{byKey: make(map[string]model.Category, len(cats)*2)}
	for _, c := range cats {
		t.byKey[strings.ToLower(c.ID)] = c
		if c.Name != "" {
			t.byKey[strings.ToLower(c.Name)] = c
		}
		if c.FreeMarker && t.freeCat.ID == "" {
			t.freeCat = c
		}
		if !c.FreeMarker && t.defCat.ID == "" {
			t.defCat = c
		}
	}
	if t.defCat.ID == "" {
		t.defCat = model.Category{ID: "general", Name: "General"}
	}
	return t
}

// Resolve maps a raw category string onto a configured category, falling
// back to the default for unknown values.
func (t CategoryTable) Resolve(raw string) model.Category {
	if c, ok := t.byKey[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return t.defCat
}

// Default returns the fallback category.
func (t CategoryTable) Default() model.Category {
	return t.defCat
}

// Free returns the free-day marker category; the bool is false when the
// table has none.
func (t CategoryTable) Free() (model.Category, bool) {
	return t.freeCat, t.freeCat.ID != ""
}
