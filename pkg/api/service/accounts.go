package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/api/validation"
	"civiclink/pkg/apperr"
	"civiclink/pkg/models"
)

type AccountService struct {
	users  repository.Users
	tokens *auth.Tokens
	now    func() time.Time
}

func NewAccountService(users repository.Users, tokens *auth.Tokens, opts ...Option) *AccountService {
	o := newOptions(opts)
	return &AccountService{
		users:  users,
		tokens: tokens,
		now:    o.now,
	}
}

type RegisterRequest struct {
	Email             string `json:"email" validate:"email" message:"Please enter a valid email"`
	Password          string `json:"password" validate:"min=6,bcrypt" message:"Password must be at least 6 characters long" bcrypt_message:"Password must be at most 72 bytes long" sensitive:"true"`
	FirstName         string `json:"firstName" validate:"required" message:"First name is required"`
	LastName          string `json:"lastName" validate:"required" message:"Last name is required"`
	Role              string `json:"role,omitempty" validate:"omitempty,role" message:"Invalid role"`
	PreferredLanguage string `json:"preferredLanguage,omitempty" validate:"omitempty,language" message:"Invalid language"`
	Community         string `json:"community,omitempty"`
	ZipCode           string `json:"zipCode,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"min=6,bcrypt" message:"Password must be at least 6 characters long" bcrypt_message:"Password must be at most 72 bytes long" sensitive:"true"`
}

// ProfileUpdate lists the account fields a user may change; nil fields are left untouched
type ProfileUpdate struct {
	FirstName         *string             `json:"firstName,omitempty"`
	LastName          *string             `json:"lastName,omitempty"`
	PreferredLanguage *string             `json:"preferredLanguage,omitempty"`
	Community         *string             `json:"community,omitempty"`
	ZipCode           *string             `json:"zipCode,omitempty"`
	PhoneNumber       *string             `json:"phoneNumber,omitempty"`
	Profile           *ProfileFields      `json:"profile,omitempty"`
	Preferences       *models.Preferences `json:"preferences,omitempty"`
}

type ProfileFields struct {
	Avatar       *string `json:"avatar,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Organization *string `json:"organization,omitempty"`
}

// Session is an issued bearer token and the account it belongs to
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an account through self sign-up, which may only request the voter or
// ambassador role.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	role := models.Role(strings.TrimSpace(req.Role))
	if len(role) == 0 {
		role = models.RoleVoter
	}

	if role != models.RoleVoter && role != models.RoleAmbassador {
		return nil, apperr.Validation(apperr.FieldError{Field: "role", Message: "Invalid role", Value: req.Role})
	}

	user, err := s.Provision(ctx, req, role)
	if err != nil {
		return nil, err
	}

	return s.session(user)
}

// Provision creates an account with any role
func (s *AccountService) Provision(ctx context.Context, req RegisterRequest, role models.Role) (*models.User, error) {
	req.Email = models.NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PreferredLanguage = strings.TrimSpace(req.PreferredLanguage)
	language := models.Language(req.PreferredLanguage)

	var fields apperr.Fields
	validation.Check(&fields, req)
	if !role.IsValid() {
		fields.Add("role", "Invalid role", string(role))
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("error registering user", err)
	}

	user := models.NewUser(req.Email, hash, req.FirstName, req.LastName, s.now())
	user.Role = role
	user.Community = strings.TrimSpace(req.Community)
	user.ZipCode = strings.TrimSpace(req.ZipCode)
	if len(language) > 0 {
		user.PreferredLanguage = language
	}

	if err = s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, storeFailure(err, "User not found", "error registering user")
	}

	return user, nil
}

func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, apperr.Invalid("Invalid credentials")
	}

	user, err := s.users.UserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Invalid("Invalid credentials")
	}
	if err != nil {
		return nil, storeFailure(err, "User not found", "error logging in")
	}

	ok, err := auth.CheckPassword(user.Password, req.Password)
	if err != nil {
		return nil, apperr.Internal("error logging in", err)
	}
	if !ok {
		return nil, apperr.Invalid("Invalid credentials")
	}

	now := s.now()
	user, err = s.users.UpdateUser(ctx, user.ID, func(u *models.User) error {
		u.LastLogin = &now
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "User not found", "error logging in")
	}

	return s.session(user)
}

func (s *AccountService) Me(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if err := auth.Authenticated(p); err != nil {
		return nil, err
	}

	user, err := s.users.User(ctx, p.UserID)
	if err != nil {
		return nil, storeFailure(err, "User not found", "error getting user")
	}

	return user, nil
}

// UpdateProfile changes the caller's account details. The stored password hash is never touched.
func (s *AccountService) UpdateProfile(ctx context.Context, p *auth.Principal, req ProfileUpdate) (*models.User, error) {
	if err := auth.Authenticated(p); err != nil {
		return nil, err
	}

	var fields apperr.Fields
	if req.FirstName != nil && len(strings.TrimSpace(*req.FirstName)) == 0 {
		fields.Add("firstName", "First name is required", *req.FirstName)
	}
	if req.LastName != nil && len(strings.TrimSpace(*req.LastName)) == 0 {
		fields.Add("lastName", "Last name is required", *req.LastName)
	}
	if req.PreferredLanguage != nil && !models.Language(*req.PreferredLanguage).IsValid() {
		fields.Add("preferredLanguage", "Invalid language", *req.PreferredLanguage)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	user, err := s.users.UpdateUser(ctx, p.UserID, func(u *models.User) error {
		assign(&u.FirstName, req.FirstName)
		assign(&u.LastName, req.LastName)
		assign(&u.Community, req.Community)
		assign(&u.ZipCode, req.ZipCode)
		assign(&u.PhoneNumber, req.PhoneNumber)
		if req.PreferredLanguage != nil {
			u.PreferredLanguage = models.Language(*req.PreferredLanguage)
		}
		if req.Profile != nil {
			assign(&u.Profile.Avatar, req.Profile.Avatar)
			assign(&u.Profile.Bio, req.Profile.Bio)
			assign(&u.Profile.Organization, req.Profile.Organization)
		}
		if req.Preferences != nil {
			u.Preferences = *req.Preferences
		}
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "User not found", "error updating profile")
	}

	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, p *auth.Principal, req ChangePasswordRequest) error {
	if err := auth.Authenticated(p); err != nil {
		return err
	}

	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := s.users.User(ctx, p.UserID)
	if err != nil {
		return storeFailure(err, "User not found", "error changing password")
	}

	ok, err := auth.CheckPassword(user.Password, req.CurrentPassword)
	if err != nil {
		return apperr.Internal("error changing password", err)
	}
	if !ok {
		return apperr.Invalid("Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("error changing password", err)
	}

	now := s.now()
	_, err = s.users.UpdateUser(ctx, user.ID, func(u *models.User) error {
		u.Password = hash
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return storeFailure(err, "User not found", "error changing password")
	}

	return nil
}

// SetRole changes an account's role. It is an administrative operation with no HTTP route.
func (s *AccountService) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, apperr.Validation(apperr.FieldError{Field: "role", Message: "Invalid role", Value: string(role)})
	}

	user, err := s.users.UserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, storeFailure(err, "User not found", "error finding user")
	}

	now := s.now()
	user, err = s.users.UpdateUser(ctx, user.ID, func(u *models.User) error {
		u.Role = role
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "User not found", "error setting role")
	}

	return user, nil
}

func (s *AccountService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("error issuing token", err)
	}
	return &Session{Token: token, User: user}, nil
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
