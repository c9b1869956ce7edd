package api

import (
	"time"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/service"
)

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Unique username"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// FreetResponse contains freet data in API responses.
type FreetResponse struct {
	ID         string    `json:"id" doc:"Freet ID"`
	AuthorID   string    `json:"author_id" doc:"Author user ID"`
	Content    string    `json:"content" doc:"Freet body"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
	ModifiedAt time.Time `json:"modified_at" doc:"Last edit time"`
	TagIDs     []string  `json:"tag_ids" doc:"Tags in the order they were attached"`
	FlagIDs    []string  `json:"flag_ids" doc:"Active flags in the order they were created"`
}

func newFreetResponse(f *domain.Freet) FreetResponse {
	return FreetResponse{
		ID:         f.ID,
		AuthorID:   f.AuthorID,
		Content:    f.Content,
		CreatedAt:  f.CreatedAt,
		ModifiedAt: f.ModifiedAt,
		TagIDs:     f.TagIDs,
		FlagIDs:    f.FlagIDs,
	}
}

func newFreetResponses(freets []*domain.Freet) []FreetResponse {
	resp := make([]FreetResponse, len(freets))
	for i, f := range freets {
		resp[i] = newFreetResponse(f)
	}
	return resp
}

// FreetListResponse contains a list of freets.
type FreetListResponse struct {
	Freets []FreetResponse `json:"freets" doc:"Freets"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Content   string    `json:"content" doc:"Tag text, case-sensitive"`
	FreetIDs  []string  `json:"freet_ids" doc:"Freets carrying this tag, in tagging order"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func newTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Content:   t.Content,
		FreetIDs:  t.TaggedIDs,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func newTagResponses(tags []*domain.Tag) []TagResponse {
	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = newTagResponse(t)
	}
	return resp
}

// TagListResponse contains a list of tags.
type TagListResponse struct {
	Tags []TagResponse `json:"tags" doc:"Tags"`
}

// FlagResponse contains flag data in API responses.
type FlagResponse struct {
	ID            string     `json:"id" doc:"Flag ID"`
	FreetID       string     `json:"freet_id" doc:"Flagged freet"`
	Kind          string     `json:"kind" doc:"Flag kind"`
	Source        string     `json:"source" doc:"Supporting source"`
	Challenges    int        `json:"challenges" doc:"Distinct challengers so far"`
	ChallengerIDs []string   `json:"challenger_ids" doc:"Users who challenged"`
	State         string     `json:"state" doc:"active or retired"`
	RetiredReason string     `json:"retired_reason,omitempty" doc:"challenged or deleted"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation time"`
	RetiredAt     *time.Time `json:"retired_at,omitempty" doc:"Retirement time"`
}

func newFlagResponse(f *domain.Flag) FlagResponse {
	return FlagResponse{
		ID:            f.ID,
		FreetID:       f.FreetID,
		Kind:          string(f.Kind),
		Source:        f.Source,
		Challenges:    f.Challenges,
		ChallengerIDs: f.ChallengerIDs,
		State:         string(f.State),
		RetiredReason: string(f.RetiredReason),
		CreatedAt:     f.CreatedAt,
		RetiredAt:     f.RetiredAt,
	}
}

// FlagListResponse contains a list of flags.
type FlagListResponse struct {
	Flags []FlagResponse `json:"flags" doc:"Active flags"`
}

// ChallengeResponse reports the outcome of a challenge.
type ChallengeResponse struct {
	Flag    FlagResponse `json:"flag" doc:"Flag after the challenge"`
	Retired bool         `json:"retired" doc:"True if this challenge retired the flag"`
}

func newChallengeResponse(r *service.ChallengeResult) ChallengeResponse {
	return ChallengeResponse{Flag: newFlagResponse(r.Flag), Retired: r.Retired}
}

// FeedResponse contains feed data in API responses.
type FeedResponse struct {
	ID        string    `json:"id" doc:"Feed ID"`
	OwnerID   string    `json:"owner_id" doc:"Owning user ID"`
	UserIDs   []string  `json:"user_ids" doc:"Selected authors; empty means any author"`
	TagIDs    []string  `json:"tag_ids" doc:"Selected tags; empty means any tags"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func newFeedResponse(f *domain.Feed) FeedResponse {
	return FeedResponse{
		ID:        f.ID,
		OwnerID:   f.OwnerID,
		UserIDs:   f.UserIDs,
		TagIDs:    f.TagIDs,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// FeedListResponse contains a list of feeds.
type FeedListResponse struct {
	Feeds []FeedResponse `json:"feeds" doc:"Feeds"`
}
