package validation

import (
	"strings"
	"testing"

	"civiclink/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty" validate:"omitempty,source_type" message:"Invalid source type"`
}

type signup struct {
	Email    string   `json:"email" validate:"email" message:"Please enter a valid email"`
	Password string   `json:"password" validate:"min=6,bcrypt" message:"Password too short" bcrypt_message:"Password too long" sensitive:"true"`
	Language string   `json:"language,omitempty" validate:"omitempty,language"`
	Rating   *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Sources  []source `json:"sources,omitempty" validate:"dive"`
}

func fields(t *testing.T, req any) []apperr.FieldError {
	t.Helper()

	err := Struct(req)
	if err == nil {
		return nil
	}

	require.True(t, apperr.Is(err, apperr.KindValidation))
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	return e.Fields
}

func TestStructAccepts(t *testing.T) {
	three := 3
	assert.NoError(t, Struct(signup{
		Email:    "ana@example.com",
		Password: "secret1",
		Language: "vi",
		Rating:   &three,
		Sources:  []source{{Name: "Registrar", Type: "government"}, {Name: "Blog"}},
	}))
}

func TestStructMessages(t *testing.T) {
	six := 6

	got := fields(t, signup{
		Email:    "not-an-email",
		Password: "12345",
		Language: "fr",
		Rating:   &six,
		Sources:  []source{{Name: "Registrar", Type: "government"}, {Name: "Rumor", Type: "gossip"}},
	})

	assert.Equal(t, []apperr.FieldError{
		{Field: "email", Message: "Please enter a valid email", Value: "not-an-email"},
		{Field: "password", Message: "Password too short"},
		{Field: "language", Message: "Invalid language", Value: "fr"},
		{Field: "rating", Message: "Invalid rating", Value: 6},
		{Field: "sources.type", Message: "Invalid source type", Value: "gossip"},
	}, got)
}

func TestRuleMessage(t *testing.T) {
	got := fields(t, signup{Email: "ana@example.com", Password: strings.Repeat("x", MaxPasswordBytes+1)})
	require.Len(t, got, 1)
	assert.Equal(t, apperr.FieldError{Field: "password", Message: "Password too long"}, got[0])

	// bytes, not characters: 25 three-byte runes exceed bcrypt's limit
	got = fields(t, signup{Email: "ana@example.com", Password: strings.Repeat("投", 25)})
	require.Len(t, got, 1)
	assert.Equal(t, "Password too long", got[0].Message)

	assert.Empty(t, fields(t, signup{Email: "ana@example.com", Password: strings.Repeat("x", MaxPasswordBytes)}))
}

func TestCheckAppends(t *testing.T) {
	var f apperr.Fields
	f.Add("relatedTerms", "Related terms must reference existing translations", nil)
	Check(&f, signup{Email: "ana@example.com", Password: "1"})

	require.Len(t, f, 2)
	assert.Equal(t, "relatedTerms", f[0].Field)
	assert.Equal(t, "password", f[1].Field)
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "email", fieldPath("signup.email"))
	assert.Equal(t, "sources.type", fieldPath("signup.sources[1].type"))
}
