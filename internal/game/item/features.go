package item

import (
	"errors"
	"reflect"
	"regexp"
)

var (
	ErrInvalidTag     = errors.New("invalid tag")
	ErrDuplicateTag   = errors.New("duplicate tag")
	ErrReservedTag    = errors.New("reserved tag")
	ErrInvalidItem    = errors.New("invalid item")
	ErrInvalidFeature = errors.New("invalid feature")
)

var featureName = regexp.MustCompile(`^[a-z_]+$`)

var senseNames = []string{"sight", "touch", "hearing", "smell", "taste"}

// HasFeature reports whether the item has the named feature. Built-in
// descriptive features are always present.
func (it *Item) HasFeature(name string) bool {
	switch name {
	case "glow", "prominence", "transparent", "mention", "called", "article",
		"gender", "number", "sight", "touch", "hearing", "smell", "taste":
		return true
	}
	_, ok := it.Features[name]
	return ok
}

// Feature returns the value of the named feature.
func (it *Item) Feature(name string) (any, bool) {
	switch name {
	case "glow":
		return it.Glow, true
	case "prominence":
		return it.Prominence, true
	case "transparent":
		return it.Transparent, true
	case "mention":
		return it.Mention, true
	case "called":
		return it.Called, true
	case "article":
		return it.Article, true
	case "gender":
		return it.Gender, true
	case "number":
		return it.Number, true
	case "sight", "touch", "hearing", "smell", "taste":
		return it.Senses[name], true
	}
	v, ok := it.Features[name]
	return v, ok
}

// SetFeature sets the named feature. Values of built-in features must have
// the built-in's type; anything else is stored as given.
func (it *Item) SetFeature(name string, value any) {
	value = Normalize(value)
	switch name {
	case "glow":
		it.Glow, _ = value.(float64)
		return
	case "prominence":
		it.Prominence, _ = value.(float64)
		return
	case "transparent":
		it.Transparent, _ = value.(bool)
		return
	case "mention":
		it.Mention, _ = value.(bool)
		return
	case "called":
		it.Called, _ = value.(string)
		return
	case "article":
		it.Article, _ = value.(string)
		return
	case "gender":
		it.Gender, _ = value.(string)
		return
	case "number":
		it.Number, _ = value.(string)
		return
	case "sight", "touch", "hearing", "smell", "taste":
		if it.Senses == nil {
			it.Senses = make(map[string]string, len(senseNames))
		}
		it.Senses[name], _ = value.(string)
		return
	}
	if it.Features == nil {
		it.Features = make(map[string]any)
	}
	it.Features[name] = value
}

// Normalize folds numeric values to float64 so features compare equal
// regardless of how they were written in a fiction.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

// SameValue compares two feature values after normalization.
func SameValue(a, b any) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}
