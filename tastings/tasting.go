package tastings

import (
	"time"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

type PrivacyLevel string

const (
	PrivacyPublic        PrivacyLevel = "PUBLIC"
	PrivacyFollowersOnly PrivacyLevel = "FOLLOWERS_ONLY"
	PrivacyPrivate       PrivacyLevel = "PRIVATE"
)

// Tasting is a published wine tasting as served by the feed endpoint.
// Timestamps stay strings so an item that fails validation can be shown exactly as received.
type Tasting struct {
	ID           string       `json:"id" yaml:"id" validate:"required,uuid"`
	UserID       string       `json:"userId" yaml:"userId" validate:"required,uuid"`
	WineID       string       `json:"wineId" yaml:"wineId" validate:"required,uuid"`
	Status       Status       `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	PrivacyLevel PrivacyLevel `json:"privacyLevel,omitempty" yaml:"privacyLevel,omitempty" validate:"omitempty,oneof=PUBLIC FOLLOWERS_ONLY PRIVATE"`
	Score        *int         `json:"score,omitempty" yaml:"score,omitempty" validate:"omitempty,min=0,max=100"`
	Pairings     *string      `json:"pairings,omitempty" yaml:"pairings,omitempty"`
	Comment      *string      `json:"comment,omitempty" yaml:"comment,omitempty"`
	LikeCount    int          `json:"likeCount" yaml:"likeCount" validate:"gte=0"`
	CommentCount int          `json:"commentCount" yaml:"commentCount" validate:"gte=0"`
	PublishedAt  *string      `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty" validate:"omitempty,isodatetime"`
	CreatedAt    string       `json:"createdAt" yaml:"createdAt" validate:"required,isodatetime"`
	UpdatedAt    string       `json:"updatedAt" yaml:"updatedAt" validate:"required,isodatetime"`
}

// Published returns PublishedAt as a time, or the zero time when absent or malformed.
func (t Tasting) Published() time.Time {
	if t.PublishedAt == nil {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, *t.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}
