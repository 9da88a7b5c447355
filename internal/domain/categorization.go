package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// OptionalTime distinguishes an absent JSON field from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// Categorization is a partial set of merchandising fields. Nil fields are
// left untouched when merged onto a listing.
type Categorization struct {
	IsFeatured           *bool        `json:"isFeatured"`
	IsTopPick            *bool        `json:"isTopPick"`
	IsHighlighted        *bool        `json:"isHighlighted"`
	IsInvestmentProperty *bool        `json:"isInvestmentProperty"`
	IsRecentlyAdded      *bool        `json:"isRecentlyAdded"`
	Priority             *int         `json:"priority"`
	FeaturedUntil        OptionalTime `json:"featuredUntil"`
	Tags                 *[]string    `json:"tags"`
}

func (c Categorization) Empty() bool {
	return len(c.Updates()) == 0
}

// Updates returns the column set to write.
func (c Categorization) Updates() map[string]any {
	out := map[string]any{}
	if c.IsFeatured != nil {
		out["is_featured"] = *c.IsFeatured
	}
	if c.IsTopPick != nil {
		out["is_top_pick"] = *c.IsTopPick
	}
	if c.IsHighlighted != nil {
		out["is_highlighted"] = *c.IsHighlighted
	}
	if c.IsInvestmentProperty != nil {
		out["is_investment_property"] = *c.IsInvestmentProperty
	}
	if c.IsRecentlyAdded != nil {
		out["is_recently_added"] = *c.IsRecentlyAdded
	}
	if c.Priority != nil {
		out["priority"] = *c.Priority
	}
	if c.FeaturedUntil.Set {
		if c.FeaturedUntil.Value == nil {
			out["featured_until"] = nil
		} else {
			out["featured_until"] = c.FeaturedUntil.Value.UTC()
		}
	}
	if c.Tags != nil {
		tags := datatypes.JSONSlice[string]{}
		tags = append(tags, (*c.Tags)...)
		out["tags"] = tags
	}
	return out
}

// ApplyTo merges the set fields onto l in memory.
func (c Categorization) ApplyTo(l *Listing) {
	if c.IsFeatured != nil {
		l.IsFeatured = *c.IsFeatured
	}
	if c.IsTopPick != nil {
		l.IsTopPick = *c.IsTopPick
	}
	if c.IsHighlighted != nil {
		l.IsHighlighted = *c.IsHighlighted
	}
	if c.IsInvestmentProperty != nil {
		l.IsInvestmentProperty = *c.IsInvestmentProperty
	}
	if c.IsRecentlyAdded != nil {
		l.IsRecentlyAdded = *c.IsRecentlyAdded
	}
	if c.Priority != nil {
		l.Priority = *c.Priority
	}
	if c.FeaturedUntil.Set {
		if c.FeaturedUntil.Value == nil {
			l.FeaturedUntil = nil
		} else {
			t := c.FeaturedUntil.Value.UTC()
			l.FeaturedUntil = &t
		}
	}
	if c.Tags != nil {
		l.Tags = datatypes.JSONSlice[string](append([]string{}, (*c.Tags)...))
	}
}
