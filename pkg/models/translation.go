package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const translationIDPrefix = "translation"

type Translation struct {
	ID           string                `firestore:"id" gorm:"primaryKey;size:64" json:"id"`
	English      string                `firestore:"english" gorm:"size:512" json:"english"`
	Translated   string                `firestore:"translated" gorm:"size:512" json:"translated"`
	Language     Language              `firestore:"language" gorm:"size:8;index:idx_translations_language_category" json:"language"`
	Explanation  string                `firestore:"explanation" gorm:"type:text" json:"explanation"`
	Category     Category              `firestore:"category" gorm:"size:32;index:idx_translations_language_category" json:"category"`
	AudioURL     string                `firestore:"audio_url,omitempty" gorm:"size:1024" json:"audioUrl,omitempty"`
	Verified     bool                  `firestore:"verified" gorm:"index" json:"verified"`
	VerifiedBy   string                `firestore:"verified_by,omitempty" gorm:"size:64" json:"verifiedBy,omitempty"`
	VerifiedAt   *time.Time            `firestore:"verified_at,omitempty" json:"verifiedAt,omitempty"`
	UsageCount   int                   `firestore:"usage_count" gorm:"index" json:"usageCount"`
	Tags         []string              `firestore:"tags" gorm:"type:text;serializer:json" json:"tags"`
	Difficulty   Difficulty            `firestore:"difficulty" gorm:"size:16" json:"difficulty"`
	Context      string                `firestore:"context,omitempty" gorm:"type:text" json:"context,omitempty"`
	RelatedTerms []string              `firestore:"related_terms" gorm:"type:text;serializer:json" json:"relatedTerms"`
	Feedback     []TranslationFeedback `firestore:"feedback" gorm:"type:text;serializer:json" json:"feedback"`
	CreatedAt    time.Time             `firestore:"created_at" gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time             `firestore:"updated_at" json:"updatedAt"`
}

type TranslationFeedback struct {
	User      string    `firestore:"user" json:"user"`
	Helpful   bool      `firestore:"helpful" json:"helpful"`
	Comment   string    `firestore:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `firestore:"created_at" json:"createdAt"`
}

func NewTranslation(english, translated string, language Language, explanation string, category Category, now time.Time) *Translation {
	return &Translation{
		ID:           fmt.Sprintf("%s-%s", translationIDPrefix, uuid.NewString()),
		English:      english,
		Translated:   translated,
		Language:     language,
		Explanation:  explanation,
		Category:     category,
		Tags:         []string{},
		Difficulty:   DifficultyBeginner,
		RelatedTerms: []string{},
		Feedback:     []TranslationFeedback{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkVerified stamps the verification state along with who set it and when
func (t *Translation) MarkVerified(verified bool, verifierID string, now time.Time) {
	t.Verified = verified
	t.VerifiedBy = verifierID
	t.VerifiedAt = &now
	t.UpdatedAt = now
}

func (t *Translation) HasFeedbackFrom(userID string) bool {
	return slices.ContainsFunc(t.Feedback, func(f TranslationFeedback) bool {
		return f.User == userID
	})
}
