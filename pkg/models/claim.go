package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const claimIDPrefix = "claim"

type Claim struct {
	ID          string          `firestore:"id" gorm:"primaryKey;size:64" json:"id"`
	Text        string          `firestore:"claim" gorm:"column:claim;type:text" json:"claim"`
	Language    Language        `firestore:"language" gorm:"size:8;index:idx_claims_language_community" json:"language"`
	Community   string          `firestore:"community,omitempty" gorm:"size:128;index:idx_claims_language_community" json:"community,omitempty"`
	SubmittedBy string          `firestore:"submitted_by" gorm:"size:64;index" json:"submittedBy"`
	Status      ClaimStatus     `firestore:"status" gorm:"size:16;index:idx_claims_status_verdict" json:"status"`
	Verdict     Verdict         `firestore:"verdict" gorm:"size:16;index:idx_claims_status_verdict" json:"verdict"`
	Explanation string          `firestore:"explanation,omitempty" gorm:"type:text" json:"explanation,omitempty"`
	Sources     []Source        `firestore:"sources" gorm:"type:text;serializer:json" json:"sources"`
	ReviewedBy  string          `firestore:"reviewed_by,omitempty" gorm:"size:64" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time      `firestore:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	Tags        []string        `firestore:"tags" gorm:"type:text;serializer:json" json:"tags"`
	Priority    Priority        `firestore:"priority" gorm:"size:16" json:"priority"`
	ShareCount  int             `firestore:"share_count" json:"shareCount"`
	ViewCount   int             `firestore:"view_count" json:"viewCount"`
	Feedback    []ClaimFeedback `firestore:"feedback" gorm:"type:text;serializer:json" json:"feedback"`
	CreatedAt   time.Time       `firestore:"created_at" gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `firestore:"updated_at" json:"updatedAt"`
}

type Source struct {
	Name string     `firestore:"name" json:"name"`
	URL  string     `firestore:"url" json:"url"`
	Type SourceType `firestore:"type,omitempty" json:"type,omitempty"`
}

type ClaimFeedback struct {
	User      string    `firestore:"user" json:"user"`
	Rating    *int      `firestore:"rating,omitempty" json:"rating,omitempty"`
	Comment   string    `firestore:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `firestore:"created_at" json:"createdAt"`
}

func NewClaim(text string, language Language, community, submittedBy string, now time.Time) *Claim {
	return &Claim{
		ID:          fmt.Sprintf("%s-%s", claimIDPrefix, uuid.NewString()),
		Text:        text,
		Language:    language,
		Community:   community,
		SubmittedBy: submittedBy,
		Status:      StatusPending,
		Verdict:     VerdictUnverified,
		Sources:     []Source{},
		Tags:        []string{},
		Priority:    PriorityMedium,
		Feedback:    []ClaimFeedback{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasFeedbackFrom reports whether the user already left feedback on the claim
func (c *Claim) HasFeedbackFrom(userID string) bool {
	return slices.ContainsFunc(c.Feedback, func(f ClaimFeedback) bool {
		return f.User == userID
	})
}
