package domain

import "time"

// Feed is a saved filter owned by one user: a set of selected authors and a set of
// selected tags, evaluated on demand against all freets.
type Feed struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	UserIDs   []string  `json:"user_ids"` // Selected authors
	TagIDs    []string  `json:"tag_ids"`  // Selected tags
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFeed creates an empty feed: it matches every freet until selectors are added.
func NewFeed(id, ownerID string) *Feed {
	now := time.Now().UTC()
	return &Feed{
		ID:        id,
		OwnerID:   ownerID,
		UserIDs:   []string{},
		TagIDs:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy reports whether userID owns the feed.
func (f *Feed) IsOwnedBy(userID string) bool {
	return f.OwnerID == userID
}

// AddUser selects an author. Returns false if already selected.
func (f *Feed) AddUser(userID string) bool {
	if !appendUnique(&f.UserIDs, userID) {
		return false
	}
	f.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveUser deselects an author. Returns false if not selected.
func (f *Feed) RemoveUser(userID string) bool {
	if !removeValue(&f.UserIDs, userID) {
		return false
	}
	f.UpdatedAt = time.Now().UTC()
	return true
}

// AddTag selects a tag. Returns false if already selected.
func (f *Feed) AddTag(tagID string) bool {
	if !appendUnique(&f.TagIDs, tagID) {
		return false
	}
	f.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveTag deselects a tag. Returns false if not selected.
func (f *Feed) RemoveTag(tagID string) bool {
	if !removeValue(&f.TagIDs, tagID) {
		return false
	}
	f.UpdatedAt = time.Now().UTC()
	return true
}

// Matches evaluates the feed predicate against a single freet.
// An empty selector set places no constraint; two non-empty sets combine with AND.
func (f *Feed) Matches(freet *Freet) bool {
	if len(f.UserIDs) > 0 && !containsString(f.UserIDs, freet.AuthorID) {
		return false
	}
	if len(f.TagIDs) > 0 && !freet.HasAnyTag(f.TagIDs) {
		return false
	}
	return true
}
