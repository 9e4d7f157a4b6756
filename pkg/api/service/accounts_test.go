package service

import (
	"context"
	"strings"
	"testing"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/apperr"
	"civiclink/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration() RegisterRequest {
	return RegisterRequest{
		Email:     "Ana@Example.com",
		Password:  "secret1",
		FirstName: "Ana",
		LastName:  "Lopez",
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.accounts.Register(ctx, registration())
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.Equal(t, models.RoleVoter, session.User.Role)
	assert.Equal(t, models.LanguageEnglish, session.User.PreferredLanguage)
	assert.NotEqual(t, "secret1", session.User.Password)

	_, err = f.accounts.Register(ctx, registration())
	require.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "User already exists", err.Error())
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		modify func(*RegisterRequest)
		field  string
	}{
		{"invalid email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *RegisterRequest) { r.Password = "12345" }, "password"},
		{"password longer than bcrypt accepts", func(r *RegisterRequest) { r.Password = strings.Repeat("p", 73) }, "password"},
		{"missing first name", func(r *RegisterRequest) { r.FirstName = " " }, "firstName"},
		{"missing last name", func(r *RegisterRequest) { r.LastName = "" }, "lastName"},
		{"self-assigned organizer", func(r *RegisterRequest) { r.Role = "organizer" }, "role"},
		{"self-assigned admin", func(r *RegisterRequest) { r.Role = "admin" }, "role"},
		{"unsupported language", func(r *RegisterRequest) { r.PreferredLanguage = "fr" }, "preferredLanguage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registration()
			tt.modify(&req)

			_, err := f.accounts.Register(context.Background(), req)
			require.True(t, apperr.Is(err, apperr.KindValidation))

			var e *apperr.Error
			require.ErrorAs(t, err, &e)
			require.NotEmpty(t, e.Fields)
			assert.Equal(t, tt.field, e.Fields[0].Field)
		})
	}
}

func TestPasswordLengthLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := registration()
	req.Password = strings.Repeat("p", 80)
	_, err := f.accounts.Register(ctx, req)
	require.True(t, apperr.Is(err, apperr.KindValidation), err)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, apperr.FieldError{Field: "password", Message: "Password must be at most 72 bytes long"}, e.Fields[0])

	// 24 three-byte runes fill bcrypt's 72 bytes exactly
	req.Password = strings.Repeat("投", 24)
	session, err := f.accounts.Register(ctx, req)
	require.NoError(t, err)
	p := &auth.Principal{UserID: session.User.ID, Role: session.User.Role}

	err = f.accounts.ChangePassword(ctx, p, ChangePasswordRequest{CurrentPassword: req.Password, NewPassword: strings.Repeat("投", 25)})
	require.True(t, apperr.Is(err, apperr.KindValidation), err)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "newPassword", e.Fields[0].Field)

	require.NoError(t, f.accounts.ChangePassword(ctx, p, ChangePasswordRequest{CurrentPassword: req.Password, NewPassword: strings.Repeat("p", 72)}))
	_, err = f.accounts.Login(ctx, LoginRequest{Email: req.Email, Password: strings.Repeat("p", 72)})
	assert.NoError(t, err)
}

func TestRegisterAmbassador(t *testing.T) {
	f := newFixture(t)

	req := registration()
	req.Role = "ambassador"
	req.PreferredLanguage = "vi"

	session, err := f.accounts.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAmbassador, session.User.Role)
	assert.Equal(t, models.LanguageVietnamese, session.User.PreferredLanguage)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.accounts.Register(ctx, registration())
	require.NoError(t, err)
	assert.Nil(t, registered.User.LastLogin)

	session, err := f.accounts.Login(ctx, LoginRequest{Email: "ANA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.NotNil(t, session.User.LastLogin)

	p, err := auth.NewTokens("test-secret", 0).Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, p.UserID)
	assert.Equal(t, models.RoleVoter, p.Role)

	for _, req := range []LoginRequest{
		{Email: "ana@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "", Password: ""},
	} {
		_, err = f.accounts.Login(ctx, req)
		require.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "Invalid credentials", err.Error())
	}
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.accounts.Register(ctx, registration())
	require.NoError(t, err)
	p := &auth.Principal{UserID: session.User.ID, Role: session.User.Role}
	hash := session.User.Password

	_, err = f.accounts.Me(ctx, nil)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	bio, community, language := "Poll worker", "Oakland", "tl"
	updated, err := f.accounts.UpdateProfile(ctx, p, ProfileUpdate{
		Community:         &community,
		PreferredLanguage: &language,
		Profile:           &ProfileFields{Bio: &bio},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oakland", updated.Community)
	assert.Equal(t, models.LanguageTagalog, updated.PreferredLanguage)
	assert.Equal(t, "Poll worker", updated.Profile.Bio)
	assert.Equal(t, "Ana", updated.FirstName)
	assert.Equal(t, hash, updated.Password)

	bad := "klingon"
	_, err = f.accounts.UpdateProfile(ctx, p, ProfileUpdate{PreferredLanguage: &bad})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = f.accounts.ChangePassword(ctx, p, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "secret2"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, f.accounts.ChangePassword(ctx, p, ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))

	_, err = f.accounts.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "secret1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.accounts.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "secret2"})
	assert.NoError(t, err)

	me, err := f.accounts.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Poll worker", me.Profile.Bio)
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Register(ctx, registration())
	require.NoError(t, err)

	user, err := f.accounts.SetRole(ctx, "ANA@example.com", models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, user.Role)

	_, err = f.accounts.SetRole(ctx, "ana@example.com", models.Role("root"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.accounts.SetRole(ctx, "nobody@example.com", models.RoleAdmin)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
