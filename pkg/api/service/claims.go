package service

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/api/validation"
	"civiclink/pkg/apperr"
	"civiclink/pkg/models"
)

const maxTrending = 10

type ClaimService struct {
	claims    repository.Claims
	directory Directory
	now       func() time.Time
}

func NewClaimService(claims repository.Claims, directory Directory, opts ...Option) *ClaimService {
	o := newOptions(opts)
	return &ClaimService{
		claims:    claims,
		directory: directory,
		now:       o.now,
	}
}

// ClaimView is a claim with its user references resolved
type ClaimView struct {
	*models.Claim
	SubmittedBy *UserSummary        `json:"submittedBy"`
	ReviewedBy  *UserSummary        `json:"reviewedBy,omitempty"`
	Feedback    []ClaimFeedbackView `json:"feedback"`
}

type ClaimFeedbackView struct {
	models.ClaimFeedback
	User *UserSummary `json:"user"`
}

type SubmitClaimRequest struct {
	Claim     string `json:"claim" validate:"min=10,max=500" message:"Claim must be between 10 and 500 characters"`
	Language  string `json:"language" validate:"language" message:"Invalid language"`
	Community string `json:"community,omitempty"`
}

type ClaimListRequest struct {
	PageRequest
	Status    string `query:"status"`
	Verdict   string `query:"verdict"`
	Language  string `query:"language"`
	Community string `query:"community"`
	Search    string `query:"search"`
}

type ClaimPage struct {
	Claims     []*ClaimView `json:"claims"`
	Pagination Pagination   `json:"pagination"`
}

type ReviewSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty" validate:"omitempty,source_type" message:"Invalid source type"`
}

// ReviewRequest carries a review decision. Empty optional fields leave the claim untouched; a
// non-nil Sources replaces the claim's sources.
type ReviewRequest struct {
	Status      string         `json:"status" validate:"review_status" message:"Invalid status"`
	Verdict     string         `json:"verdict,omitempty" validate:"omitempty,verdict" message:"Invalid verdict"`
	Explanation string         `json:"explanation,omitempty"`
	Sources     []ReviewSource `json:"sources,omitempty" validate:"dive"`
	Priority    string         `json:"priority,omitempty" validate:"omitempty,priority" message:"Invalid priority"`
}

type ClaimFeedbackRequest struct {
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5" message:"Rating must be between 1 and 5"`
	Comment string `json:"comment,omitempty"`
}

type TrendingKey struct {
	Language  models.Language `json:"language"`
	Community string          `json:"community,omitempty"`
}

type TrendingClaim struct {
	Claim     string `json:"claim"`
	ViewCount int    `json:"viewCount"`
}

type TrendingGroup struct {
	Key        TrendingKey     `json:"_id"`
	Claims     []TrendingClaim `json:"claims"`
	TotalViews int             `json:"totalViews"`
}

func (s *ClaimService) Submit(ctx context.Context, p *auth.Principal, req SubmitClaimRequest) (*ClaimView, error) {
	if err := auth.Authenticated(p); err != nil {
		return nil, err
	}

	req.Claim = strings.TrimSpace(req.Claim)
	req.Language = strings.TrimSpace(req.Language)
	req.Community = strings.TrimSpace(req.Community)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	claim := models.NewClaim(req.Claim, models.Language(req.Language), req.Community, p.UserID, s.now())
	if err := s.claims.CreateClaim(ctx, claim); err != nil {
		return nil, storeFailure(err, "Claim not found", "error creating claim")
	}

	return s.view(ctx, claim)
}

func (s *ClaimService) List(ctx context.Context, req ClaimListRequest) (*ClaimPage, error) {
	var fields apperr.Fields
	page, limit := req.PageRequest.resolve(&fields, defaultClaimLimit)

	filter := repository.ClaimFilter{
		Status:    models.ClaimStatus(req.Status),
		Verdict:   models.Verdict(req.Verdict),
		Language:  models.Language(req.Language),
		Community: req.Community,
		Search:    strings.TrimSpace(req.Search),
	}
	if len(filter.Status) > 0 && !filter.Status.IsValid() {
		fields.Add("status", "Invalid status", req.Status)
	}
	if len(filter.Verdict) > 0 && !filter.Verdict.IsValid() {
		fields.Add("verdict", "Invalid verdict", req.Verdict)
	}
	if len(filter.Language) > 0 && !filter.Language.IsValid() {
		fields.Add("language", "Invalid language", req.Language)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	claims, total, err := s.claims.QueryClaims(ctx, filter, offset(page, limit))
	if err != nil {
		return nil, storeFailure(err, "Claim not found", "error listing claims")
	}

	views, err := s.views(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &ClaimPage{
		Claims:     views,
		Pagination: newPagination(page, limit, total),
	}, nil
}

// Get returns a claim, counting the read as a view
func (s *ClaimService) Get(ctx context.Context, id string) (*ClaimView, error) {
	if err := s.claims.IncrementClaim(ctx, id, repository.ClaimViews); err != nil {
		return nil, storeFailure(err, "Claim not found", "error counting claim view")
	}

	claim, err := s.claims.Claim(ctx, id)
	if err != nil {
		return nil, storeFailure(err, "Claim not found", "error getting claim")
	}

	return s.view(ctx, claim)
}

// Trending groups verified claims by language and community, most viewed groups first
func (s *ClaimService) Trending(ctx context.Context) ([]TrendingGroup, error) {
	claims, err := s.claims.ClaimsWithStatus(ctx, models.StatusVerified)
	if err != nil {
		return nil, storeFailure(err, "Claim not found", "error getting trending claims")
	}

	index := make(map[TrendingKey]int)
	groups := make([]TrendingGroup, 0)
	for _, c := range claims {
		key := TrendingKey{Language: c.Language, Community: c.Community}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TrendingGroup{Key: key, Claims: []TrendingClaim{}})
		}
		groups[i].Claims = append(groups[i].Claims, TrendingClaim{Claim: c.Text, ViewCount: c.ViewCount})
		groups[i].TotalViews += c.ViewCount
	}

	slices.SortStableFunc(groups, func(a, b TrendingGroup) int {
		if n := cmp.Compare(b.TotalViews, a.TotalViews); n != 0 {
			return n
		}
		if n := cmp.Compare(a.Key.Language, b.Key.Language); n != 0 {
			return n
		}
		return cmp.Compare(a.Key.Community, b.Key.Community)
	})

	if len(groups) > maxTrending {
		groups = groups[:maxTrending]
	}

	return groups, nil
}

// Review records a reviewer's decision. Any status may follow any other.
func (s *ClaimService) Review(ctx context.Context, p *auth.Principal, id string, req ReviewRequest) (*ClaimView, error) {
	if err := auth.Authorize(p, auth.CapabilityReviewClaims); err != nil {
		return nil, err
	}

	req.Status = strings.TrimSpace(req.Status)
	req.Verdict = strings.TrimSpace(req.Verdict)
	req.Priority = strings.TrimSpace(req.Priority)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	status := models.ClaimStatus(req.Status)
	verdict := models.Verdict(req.Verdict)
	priority := models.Priority(req.Priority)

	var sources []models.Source
	if req.Sources != nil {
		sources = make([]models.Source, 0, len(req.Sources))
		for _, src := range req.Sources {
			sources = append(sources, models.Source{Name: src.Name, URL: src.URL, Type: models.SourceType(src.Type)})
		}
	}

	explanation := strings.TrimSpace(req.Explanation)
	now := s.now()

	claim, err := s.claims.UpdateClaim(ctx, id, func(c *models.Claim) error {
		c.Status = status
		c.ReviewedBy = p.UserID
		c.ReviewedAt = &now
		c.UpdatedAt = now
		if len(verdict) > 0 {
			c.Verdict = verdict
		}
		if len(explanation) > 0 {
			c.Explanation = explanation
		}
		if sources != nil {
			c.Sources = sources
		}
		if len(priority) > 0 {
			c.Priority = priority
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "Claim not found", "error reviewing claim")
	}

	return s.view(ctx, claim)
}

// AddFeedback appends the caller's feedback; each user may leave feedback once per claim
func (s *ClaimService) AddFeedback(ctx context.Context, p *auth.Principal, id string, req ClaimFeedbackRequest) error {
	if err := auth.Authenticated(p); err != nil {
		return err
	}

	if err := validation.Struct(req); err != nil {
		return err
	}

	now := s.now()
	comment := strings.TrimSpace(req.Comment)

	_, err := s.claims.UpdateClaim(ctx, id, func(c *models.Claim) error {
		if c.HasFeedbackFrom(p.UserID) {
			return apperr.Conflict("Feedback already submitted")
		}
		c.Feedback = append(c.Feedback, models.ClaimFeedback{
			User:      p.UserID,
			Rating:    req.Rating,
			Comment:   comment,
			CreatedAt: now,
		})
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return storeFailure(err, "Claim not found", "error adding claim feedback")
	}

	return nil
}

func (s *ClaimService) TrackShare(ctx context.Context, id string) error {
	if err := s.claims.IncrementClaim(ctx, id, repository.ClaimShares); err != nil {
		return storeFailure(err, "Claim not found", "error tracking claim share")
	}
	return nil
}

func (s *ClaimService) view(ctx context.Context, claim *models.Claim) (*ClaimView, error) {
	views, err := s.views(ctx, []*models.Claim{claim})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ClaimService) views(ctx context.Context, claims []*models.Claim) ([]*ClaimView, error) {
	ids := make([]string, 0)
	for _, c := range claims {
		ids = append(ids, c.SubmittedBy, c.ReviewedBy)
		for _, f := range c.Feedback {
			ids = append(ids, f.User)
		}
	}

	users, err := s.directory.Summaries(ctx, ids)
	if err != nil {
		return nil, storeFailure(err, "User not found", "error resolving claim users")
	}

	views := make([]*ClaimView, 0, len(claims))
	for _, c := range claims {
		v := &ClaimView{
			Claim:       c,
			SubmittedBy: users[c.SubmittedBy],
			ReviewedBy:  users[c.ReviewedBy].withoutEmail(),
			Feedback:    make([]ClaimFeedbackView, 0, len(c.Feedback)),
		}
		for _, f := range c.Feedback {
			v.Feedback = append(v.Feedback, ClaimFeedbackView{ClaimFeedback: f, User: users[f.User].withoutEmail()})
		}
		views = append(views, v)
	}

	return views, nil
}
