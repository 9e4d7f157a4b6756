package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userIDPrefix = "user"

type User struct {
	ID                   string      `firestore:"id" gorm:"primaryKey;size:64" json:"id"`
	Email                string      `firestore:"email" gorm:"size:254;uniqueIndex" json:"email"`
	Password             string      `firestore:"password" gorm:"size:72" json:"-"`
	FirstName            string      `firestore:"first_name" gorm:"size:128" json:"firstName"`
	LastName             string      `firestore:"last_name" gorm:"size:128" json:"lastName"`
	Role                 Role        `firestore:"role" gorm:"size:16" json:"role"`
	PreferredLanguage    Language    `firestore:"preferred_language" gorm:"size:8" json:"preferredLanguage"`
	Community            string      `firestore:"community,omitempty" gorm:"size:128" json:"community,omitempty"`
	ZipCode              string      `firestore:"zip_code,omitempty" gorm:"size:16" json:"zipCode,omitempty"`
	PhoneNumber          string      `firestore:"phone_number,omitempty" gorm:"size:32" json:"phoneNumber,omitempty"`
	IsVerified           bool        `firestore:"is_verified" json:"isVerified"`
	VerificationToken    string      `firestore:"verification_token,omitempty" gorm:"size:128" json:"-"`
	ResetPasswordToken   string      `firestore:"reset_password_token,omitempty" gorm:"size:128" json:"-"`
	ResetPasswordExpires *time.Time  `firestore:"reset_password_expires,omitempty" json:"-"`
	LastLogin            *time.Time  `firestore:"last_login,omitempty" json:"lastLogin,omitempty"`
	Profile              Profile     `firestore:"profile" gorm:"type:text;serializer:json" json:"profile"`
	Preferences          Preferences `firestore:"preferences" gorm:"type:text;serializer:json" json:"preferences"`
	CreatedAt            time.Time   `firestore:"created_at" json:"createdAt"`
	UpdatedAt            time.Time   `firestore:"updated_at" json:"updatedAt"`
}

type Profile struct {
	Avatar           string             `firestore:"avatar,omitempty" json:"avatar,omitempty"`
	Bio              string             `firestore:"bio,omitempty" json:"bio,omitempty"`
	Organization     string             `firestore:"organization,omitempty" json:"organization,omitempty"`
	AmbassadorPoints int                `firestore:"ambassador_points" json:"ambassadorPoints"`
	TrainingProgress []TrainingProgress `firestore:"training_progress" json:"trainingProgress"`
}

type TrainingProgress struct {
	Module      string     `firestore:"module" json:"module"`
	Completed   bool       `firestore:"completed" json:"completed"`
	Progress    int        `firestore:"progress" json:"progress"`
	CompletedAt *time.Time `firestore:"completed_at,omitempty" json:"completedAt,omitempty"`
}

type Preferences struct {
	Notifications NotificationPreferences  `firestore:"notifications" json:"notifications"`
	Accessibility AccessibilityPreferences `firestore:"accessibility" json:"accessibility"`
}

type NotificationPreferences struct {
	Email bool `firestore:"email" json:"email"`
	SMS   bool `firestore:"sms" json:"sms"`
	Push  bool `firestore:"push" json:"push"`
}

type AccessibilityPreferences struct {
	HighContrast bool `firestore:"high_contrast" json:"highContrast"`
	LargeText    bool `firestore:"large_text" json:"largeText"`
	AudioEnabled bool `firestore:"audio_enabled" json:"audioEnabled"`
}

// NewUser creates a voter account. The password must already be hashed.
func NewUser(email, passwordHash, firstName, lastName string, now time.Time) *User {
	return &User{
		ID:                fmt.Sprintf("%s-%s", userIDPrefix, uuid.NewString()),
		Email:             NormalizeEmail(email),
		Password:          passwordHash,
		FirstName:         firstName,
		LastName:          lastName,
		Role:              RoleVoter,
		PreferredLanguage: LanguageEnglish,
		Profile: Profile{
			TrainingProgress: []TrainingProgress{},
		},
		Preferences: DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: NotificationPreferences{Email: true, SMS: false, Push: true},
		Accessibility: AccessibilityPreferences{HighContrast: false, LargeText: false, AudioEnabled: true},
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
