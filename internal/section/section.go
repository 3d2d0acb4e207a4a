package section

import "time"

// ID names a homepage section block.
type ID string

const (
	Hero             ID = "hero"
	Features         ID = "features"
	NewArrivals      ID = "newArrivals"
	Categories       ID = "categories"
	FeaturedProducts ID = "featuredProducts"
	BrandBanner      ID = "brandBanner"
)

// OrderItem is one entry of the homepage section ordering. StartDate and
// EndDate bound an optional schedule window; an absent bound is open-ended.
type OrderItem struct {
	ID           ID         `json:"id"`
	Label        string     `json:"label"`
	Enabled      bool       `json:"enabled"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	CollectionID *string    `json:"collectionId,omitempty"`
}

// Defaults returns the full known section set in default order, all enabled.
func Defaults() []OrderItem {
	return []OrderItem{
		{ID: Hero, Label: "Hero Banner", Enabled: true},
		{ID: Features, Label: "Feature Highlights", Enabled: true},
		{ID: NewArrivals, Label: "New Arrivals", Enabled: true},
		{ID: Categories, Label: "Shop by Category", Enabled: true},
		{ID: FeaturedProducts, Label: "Featured Products", Enabled: true},
		{ID: BrandBanner, Label: "Brand Banner", Enabled: true},
	}
}

// Resolve merges a stored, possibly partial ordering with the defaults.
// The result always contains exactly the default id set: stored entries
// override default fields and come first in their stored order, ids absent
// from storage are appended in default relative order, and stored ids that
// are no longer known are dropped.
func Resolve(stored []OrderItem) []OrderItem {
	defaults := Defaults()
	byID := make(map[ID]OrderItem, len(defaults))
	for _, d := range defaults {
		byID[d.ID] = d
	}

	out := make([]OrderItem, 0, len(defaults))
	seen := make(map[ID]bool, len(defaults))
	for _, s := range stored {
		d, known := byID[s.ID]
		if !known || seen[s.ID] {
			continue
		}
		merged := s
		if merged.Label == "" {
			merged.Label = d.Label
		}
		out = append(out, merged)
		seen[s.ID] = true
	}
	for _, d := range defaults {
		if !seen[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// IsScheduledActive reports whether the section should render at now:
// it must be enabled and now must fall inside its schedule window.
func IsScheduledActive(it OrderItem, now time.Time) bool {
	if !it.Enabled {
		return false
	}
	if it.StartDate != nil && it.StartDate.After(now) {
		return false
	}
	if it.EndDate != nil && it.EndDate.Before(now) {
		return false
	}
	return true
}
