package domain

import "time"

// Tag is a shared label. Tags are community-wide and addressed by Content.
// Tags are never deleted implicitly: a tag whose TaggedIDs becomes empty persists.
type Tag struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`    // Unique, case-sensitive
	TaggedIDs []string  `json:"tagged_ids"` // Freet IDs labeled with this tag
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTag creates a tag with an empty tagged set.
func NewTag(id, content string) *Tag {
	now := time.Now().UTC()
	return &Tag{
		ID:        id,
		Content:   content,
		TaggedIDs: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// AddFreet adds freetID to the tagged set. Returns false if already present.
func (t *Tag) AddFreet(freetID string) bool {
	if !appendUnique(&t.TaggedIDs, freetID) {
		return false
	}
	t.Touch()
	return true
}

// RemoveFreet removes freetID from the tagged set. Returns false if absent.
func (t *Tag) RemoveFreet(freetID string) bool {
	if !removeValue(&t.TaggedIDs, freetID) {
		return false
	}
	t.Touch()
	return true
}
