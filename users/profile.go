package users

import (
	"time"

	"github.com/jrsteele09/vinnote-client/internal/utils"
)

// UserType is the kind of account chosen at registration
type UserType string

const (
	Sommelier  UserType = "SOMMELIER"
	Enthusiast UserType = "ENTHUSIAST"
)

// Valid reports whether t is one of the known account types.
func (t UserType) Valid() bool {
	return t == Sommelier || t == Enthusiast
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type ExpertiseLevel string

const (
	ExpertiseBeginner     ExpertiseLevel = "INICIANTE"
	ExpertiseIntermediate ExpertiseLevel = "INTERMEDIARIO"
	ExpertiseAdvanced     ExpertiseLevel = "AVANCADO"
	ExpertiseExpert       ExpertiseLevel = "EXPERT"
)

// Profile is the server-authoritative user record returned by GET /users/me.
// The copy held in the credential store is only a convenience snapshot.
type Profile struct {
	ID                 string              `json:"id"`
	Email              string              `json:"email"`
	Name               string              `json:"name"`
	UserType           UserType            `json:"userType"`
	VerificationStatus *VerificationStatus `json:"verificationStatus,omitempty"` // nil until a sommelier submits a certificate
	ExpertiseLevel     *ExpertiseLevel     `json:"expertiseLevel,omitempty"`
	ProfileImageURL    *string             `json:"profileImageUrl,omitempty"`
	Bio                *string             `json:"bio,omitempty"`
	TastingCount       int                 `json:"tastingCount"`
	FollowerCount      int                 `json:"followerCount"`
	FollowingCount     int                 `json:"followingCount"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
}

// IsVerified reports whether the account passed sommelier verification
func (p *Profile) IsVerified() bool {
	return p != nil && utils.Value(p.VerificationStatus) == VerificationVerified
}

// Joined parses CreatedAt, returning the zero time when it is not RFC 3339.
func (p *Profile) Joined() time.Time {
	if p == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
