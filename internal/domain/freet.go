package domain

import (
	"slices"
	"time"
)

// Freet is a single user-authored post.
// Tag and flag services maintain TagIDs and FlagIDs; identity and authorship never change.
type Freet struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Seq        uint64    `json:"seq"`      // Store-assigned insertion sequence
	TagIDs     []string  `json:"tag_ids"`  // Insertion order, no duplicates
	FlagIDs    []string  `json:"flag_ids"` // Insertion order
}

// NewFreet creates a freet with both timestamps set to now.
func NewFreet(id, authorID, content string) *Freet {
	now := time.Now().UTC()
	return &Freet{
		ID:         id,
		AuthorID:   authorID,
		Content:    content,
		CreatedAt:  now,
		ModifiedAt: now,
		TagIDs:     []string{},
		FlagIDs:    []string{},
	}
}

// Edit replaces the content and bumps the modification timestamp.
func (f *Freet) Edit(content string) {
	f.Content = content
	f.ModifiedAt = time.Now().UTC()
}

// HasTag reports whether the freet carries tagID.
func (f *Freet) HasTag(tagID string) bool {
	return slices.Contains(f.TagIDs, tagID)
}

// HasAnyTag reports whether the freet's tag list intersects tagIDs.
func (f *Freet) HasAnyTag(tagIDs []string) bool {
	for _, id := range f.TagIDs {
		if slices.Contains(tagIDs, id) {
			return true
		}
	}
	return false
}

// AddTag appends tagID. Returns false if already present.
func (f *Freet) AddTag(tagID string) bool {
	return appendUnique(&f.TagIDs, tagID)
}

// RemoveTag removes tagID by value. Returns false if absent.
func (f *Freet) RemoveTag(tagID string) bool {
	return removeValue(&f.TagIDs, tagID)
}

// AddFlag appends flagID. Returns false if already present.
func (f *Freet) AddFlag(flagID string) bool {
	return appendUnique(&f.FlagIDs, flagID)
}

// RemoveFlag removes flagID by value. Returns false if absent.
func (f *Freet) RemoveFlag(flagID string) bool {
	return removeValue(&f.FlagIDs, flagID)
}

// NewerThan orders freets most recently modified first.
// Ties fall back to the insertion sequence, newest insertion first.
func (f *Freet) NewerThan(other *Freet) bool {
	if !f.ModifiedAt.Equal(other.ModifiedAt) {
		return f.ModifiedAt.After(other.ModifiedAt)
	}
	return f.Seq > other.Seq
}

// SortNewestFirst sorts freets in place using NewerThan.
func SortNewestFirst(freets []*Freet) {
	slices.SortStableFunc(freets, func(a, b *Freet) int {
		switch {
		case a.NewerThan(b):
			return -1
		case b.NewerThan(a):
			return 1
		default:
			return 0
		}
	})
}
