package domain

import (
	"slices"
	"time"
)

// ChallengeRetirementThreshold is the challenge count at which a flag retires itself.
const ChallengeRetirementThreshold = 11

// FlagKind is the closed set of moderation markers.
type FlagKind string

const (
	// FlagKindFact marks a freet as making a disputed factual claim.
	FlagKindFact FlagKind = "Fact"
)

// FlagKinds returns every valid flag kind.
func FlagKinds() []FlagKind {
	return []FlagKind{FlagKindFact}
}

// IsValid reports whether k is one of the known kinds.
func (k FlagKind) IsValid() bool {
	return slices.Contains(FlagKinds(), k)
}

// FlagState is the lifecycle state of a flag.
type FlagState string

const (
	FlagStateActive  FlagState = "active"
	FlagStateRetired FlagState = "retired"
)

// RetiredReason records which transition retired a flag.
type RetiredReason string

const (
	RetiredByChallenges RetiredReason = "challenged"
	RetiredByDeletion   RetiredReason = "deleted"
)

// Flag is a moderation marker attached to exactly one freet.
// Retired flags stay in the store as tombstones; their ids are never valid again.
type Flag struct {
	ID            string        `json:"id"`
	FreetID       string        `json:"freet_id"`
	Kind          FlagKind      `json:"kind"`
	Source        string        `json:"source"`
	Challenges    int           `json:"challenges"`
	ChallengerIDs []string      `json:"challenger_ids"`
	State         FlagState     `json:"state"`
	RetiredReason RetiredReason `json:"retired_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	RetiredAt     *time.Time    `json:"retired_at,omitempty"`
}

// NewFlag creates an active flag with no challenges.
func NewFlag(id, freetID string, kind FlagKind, source string) *Flag {
	return &Flag{
		ID:            id,
		FreetID:       freetID,
		Kind:          kind,
		Source:        source,
		ChallengerIDs: []string{},
		State:         FlagStateActive,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsActive reports whether the flag is still in force.
func (f *Flag) IsActive() bool {
	return f.State == FlagStateActive
}

// HasChallenger reports whether userID already challenged this flag.
func (f *Flag) HasChallenger(userID string) bool {
	return slices.Contains(f.ChallengerIDs, userID)
}

// RecordChallenge counts a challenge from userID and retires the flag when the
// count reaches ChallengeRetirementThreshold. Returns false if userID already
// challenged or the flag is not active; the flag is unchanged in that case.
func (f *Flag) RecordChallenge(userID string) bool {
	if !f.IsActive() || f.HasChallenger(userID) {
		return false
	}
	f.Challenges++
	f.ChallengerIDs = append(f.ChallengerIDs, userID)
	if f.Challenges >= ChallengeRetirementThreshold {
		f.Retire(RetiredByChallenges)
	}
	return true
}

// Retire moves an active flag to the retired state. No-op if already retired.
func (f *Flag) Retire(reason RetiredReason) {
	if !f.IsActive() {
		return
	}
	now := time.Now().UTC()
	f.State = FlagStateRetired
	f.RetiredReason = reason
	f.RetiredAt = &now
}
