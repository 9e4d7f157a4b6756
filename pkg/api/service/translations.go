package service

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/api/validation"
	"civiclink/pkg/apperr"
	"civiclink/pkg/models"
)

type TranslationService struct {
	translations repository.Translations
	directory    Directory
	now          func() time.Time
}

func NewTranslationService(translations repository.Translations, directory Directory, opts ...Option) *TranslationService {
	o := newOptions(opts)
	return &TranslationService{
		translations: translations,
		directory:    directory,
		now:          o.now,
	}
}

// TranslationView is a translation with its verifier and related terms resolved
type TranslationView struct {
	*models.Translation
	VerifiedBy   *UserSummary  `json:"verifiedBy,omitempty"`
	RelatedTerms []RelatedTerm `json:"relatedTerms"`
}

type RelatedTerm struct {
	ID         string          `json:"id"`
	English    string          `json:"english"`
	Translated string          `json:"translated"`
	Language   models.Language `json:"language"`
}

type CreateTranslationRequest struct {
	English      string   `json:"english" validate:"required" message:"English text is required"`
	Translated   string   `json:"translated" validate:"required" message:"Translated text is required"`
	Language     string   `json:"language" validate:"translation_language" message:"Invalid language"`
	Explanation  string   `json:"explanation" validate:"required" message:"Explanation is required"`
	Category     string   `json:"category" validate:"category" message:"Invalid category"`
	AudioURL     string   `json:"audioUrl,omitempty" validate:"omitempty,http_url" message:"Audio URL must be a valid URL"`
	Tags         []string `json:"tags,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty" validate:"omitempty,difficulty" message:"Invalid difficulty"`
	Context      string   `json:"context,omitempty"`
	RelatedTerms []string `json:"relatedTerms,omitempty"`
}

type TranslationListRequest struct {
	PageRequest
	Language string `query:"language"`
	Category string `query:"category"`
	Verified string `query:"verified"`
	Search   string `query:"search"`
}

type TranslationPage struct {
	Translations []*TranslationView `json:"translations"`
	Pagination   Pagination         `json:"pagination"`
}

type TranslationFeedbackRequest struct {
	Helpful *bool  `json:"helpful" validate:"required" message:"Helpful must be a boolean"`
	Comment string `json:"comment,omitempty"`
}

type CategoryLanguage struct {
	Language models.Language `json:"language"`
	Count    int             `json:"count"`
	Verified int             `json:"verified"`
}

type CategorySummary struct {
	Category      models.Category    `json:"_id"`
	Languages     []CategoryLanguage `json:"languages"`
	TotalCount    int                `json:"totalCount"`
	TotalVerified int                `json:"totalVerified"`
}

type TranslationStats struct {
	TotalTranslations    int     `json:"totalTranslations"`
	VerifiedTranslations int     `json:"verifiedTranslations"`
	TotalUsage           int     `json:"totalUsage"`
	LanguageCount        int     `json:"languageCount"`
	CategoryCount        int     `json:"categoryCount"`
	VerificationRate     float64 `json:"verificationRate"`
}

// Create stores a translation authored by an organizer. Authored translations are verified by
// their author.
func (s *TranslationService) Create(ctx context.Context, p *auth.Principal, req CreateTranslationRequest) (*TranslationView, error) {
	if err := auth.Authorize(p, auth.CapabilityAuthorTranslations); err != nil {
		return nil, err
	}

	for _, field := range []*string{&req.English, &req.Translated, &req.Explanation, &req.Language, &req.Category, &req.Difficulty, &req.AudioURL, &req.Context} {
		*field = strings.TrimSpace(*field)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	related := repository.UniqueIDs(req.RelatedTerms)
	if len(related) > 0 {
		found, err := s.translations.TranslationsByID(ctx, related)
		if err != nil {
			return nil, storeFailure(err, "Translation not found", "error resolving related terms")
		}
		if len(found) != len(related) {
			return nil, apperr.Validation(apperr.FieldError{Field: "relatedTerms", Message: "Related terms must reference existing translations", Value: req.RelatedTerms})
		}
	}

	now := s.now()
	t := models.NewTranslation(req.English, req.Translated, models.Language(req.Language), req.Explanation, models.Category(req.Category), now)
	t.AudioURL = req.AudioURL
	t.Context = req.Context
	t.RelatedTerms = related
	if len(req.Difficulty) > 0 {
		t.Difficulty = models.Difficulty(req.Difficulty)
	}
	if req.Tags != nil {
		t.Tags = req.Tags
	}
	t.MarkVerified(true, p.UserID, now)

	if err := s.translations.CreateTranslation(ctx, t); err != nil {
		return nil, storeFailure(err, "Translation not found", "error creating translation")
	}

	return s.view(ctx, t, true)
}

// SetVerified marks a translation verified or unverified, stamping the verifier either way
func (s *TranslationService) SetVerified(ctx context.Context, p *auth.Principal, id string, verified *bool) (*TranslationView, error) {
	if err := auth.Authorize(p, auth.CapabilityVerifyTranslations); err != nil {
		return nil, err
	}

	if verified == nil {
		return nil, apperr.Validation(apperr.FieldError{Field: "verified", Message: "Verified must be a boolean"})
	}

	now := s.now()
	t, err := s.translations.UpdateTranslation(ctx, id, func(t *models.Translation) error {
		t.MarkVerified(*verified, p.UserID, now)
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "Translation not found", "error verifying translation")
	}

	return s.view(ctx, t, false)
}

func (s *TranslationService) List(ctx context.Context, req TranslationListRequest) (*TranslationPage, error) {
	var fields apperr.Fields
	page, limit := req.PageRequest.resolve(&fields, defaultTranslationLimit)

	filter := repository.TranslationFilter{
		Language: models.Language(req.Language),
		Category: models.Category(req.Category),
		Search:   strings.TrimSpace(req.Search),
	}
	if len(filter.Language) > 0 && !filter.Language.IsTranslationTarget() {
		fields.Add("language", "Invalid language", req.Language)
	}
	if len(filter.Category) > 0 && !filter.Category.IsValid() {
		fields.Add("category", "Invalid category", req.Category)
	}
	if len(req.Verified) > 0 {
		v, err := strconv.ParseBool(req.Verified)
		if err != nil {
			fields.Add("verified", "Verified must be a boolean", req.Verified)
		} else {
			filter.Verified = &v
		}
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	translations, total, err := s.translations.QueryTranslations(ctx, filter, offset(page, limit))
	if err != nil {
		return nil, storeFailure(err, "Translation not found", "error listing translations")
	}

	views, err := s.views(ctx, translations, false)
	if err != nil {
		return nil, err
	}

	return &TranslationPage{
		Translations: views,
		Pagination:   newPagination(page, limit, total),
	}, nil
}

// Get returns a translation, counting the read as a use
func (s *TranslationService) Get(ctx context.Context, id string) (*TranslationView, error) {
	if err := s.translations.IncrementTranslationUsage(ctx, id); err != nil {
		return nil, storeFailure(err, "Translation not found", "error counting translation usage")
	}

	t, err := s.translations.Translation(ctx, id)
	if err != nil {
		return nil, storeFailure(err, "Translation not found", "error getting translation")
	}

	return s.view(ctx, t, true)
}

// Categories summarizes translations per category and language, largest categories first
func (s *TranslationService) Categories(ctx context.Context) ([]CategorySummary, error) {
	translations, err := s.translations.AllTranslations(ctx)
	if err != nil {
		return nil, storeFailure(err, "Translation not found", "error summarizing categories")
	}

	index := make(map[models.Category]int)
	summaries := make([]CategorySummary, 0)
	for _, t := range translations {
		i, ok := index[t.Category]
		if !ok {
			i = len(summaries)
			index[t.Category] = i
			summaries = append(summaries, CategorySummary{Category: t.Category, Languages: []CategoryLanguage{}})
		}

		summary := &summaries[i]
		j := slices.IndexFunc(summary.Languages, func(l CategoryLanguage) bool {
			return l.Language == t.Language
		})
		if j < 0 {
			j = len(summary.Languages)
			summary.Languages = append(summary.Languages, CategoryLanguage{Language: t.Language})
		}

		summary.Languages[j].Count++
		summary.TotalCount++
		if t.Verified {
			summary.Languages[j].Verified++
			summary.TotalVerified++
		}
	}

	for i := range summaries {
		slices.SortFunc(summaries[i].Languages, func(a, b CategoryLanguage) int {
			return cmp.Compare(a.Language, b.Language)
		})
	}

	slices.SortStableFunc(summaries, func(a, b CategorySummary) int {
		if n := cmp.Compare(b.TotalCount, a.TotalCount); n != 0 {
			return n
		}
		return cmp.Compare(a.Category, b.Category)
	})

	return summaries, nil
}

func (s *TranslationService) StatsOverview(ctx context.Context) (*TranslationStats, error) {
	translations, err := s.translations.AllTranslations(ctx)
	if err != nil {
		return nil, storeFailure(err, "Translation not found", "error computing translation stats")
	}

	stats := &TranslationStats{}
	languages := make(map[models.Language]bool)
	categories := make(map[models.Category]bool)
	for _, t := range translations {
		stats.TotalTranslations++
		stats.TotalUsage += t.UsageCount
		if t.Verified {
			stats.VerifiedTranslations++
		}
		languages[t.Language] = true
		categories[t.Category] = true
	}
	stats.LanguageCount = len(languages)
	stats.CategoryCount = len(categories)

	if stats.TotalTranslations > 0 {
		stats.VerificationRate = float64(stats.VerifiedTranslations) / float64(stats.TotalTranslations) * 100
	}

	return stats, nil
}

func (s *TranslationService) AddFeedback(ctx context.Context, p *auth.Principal, id string, req TranslationFeedbackRequest) error {
	if err := auth.Authenticated(p); err != nil {
		return err
	}

	if err := validation.Struct(req); err != nil {
		return err
	}

	now := s.now()
	comment := strings.TrimSpace(req.Comment)

	_, err := s.translations.UpdateTranslation(ctx, id, func(t *models.Translation) error {
		if t.HasFeedbackFrom(p.UserID) {
			return apperr.Conflict("Feedback already submitted")
		}
		t.Feedback = append(t.Feedback, models.TranslationFeedback{
			User:      p.UserID,
			Helpful:   *req.Helpful,
			Comment:   comment,
			CreatedAt: now,
		})
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return storeFailure(err, "Translation not found", "error adding translation feedback")
	}

	return nil
}

func (s *TranslationService) view(ctx context.Context, t *models.Translation, withRelated bool) (*TranslationView, error) {
	views, err := s.views(ctx, []*models.Translation{t}, withRelated)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *TranslationService) views(ctx context.Context, translations []*models.Translation, withRelated bool) ([]*TranslationView, error) {
	verifiers := make([]string, 0, len(translations))
	relatedIDs := make([]string, 0)
	for _, t := range translations {
		verifiers = append(verifiers, t.VerifiedBy)
		if withRelated {
			relatedIDs = append(relatedIDs, t.RelatedTerms...)
		}
	}

	users, err := s.directory.Summaries(ctx, verifiers)
	if err != nil {
		return nil, storeFailure(err, "User not found", "error resolving translation verifiers")
	}

	related := make(map[string]RelatedTerm)
	if ids := repository.UniqueIDs(relatedIDs); len(ids) > 0 {
		found, err := s.translations.TranslationsByID(ctx, ids)
		if err != nil {
			return nil, storeFailure(err, "Translation not found", "error resolving related terms")
		}
		for _, r := range found {
			related[r.ID] = RelatedTerm{ID: r.ID, English: r.English, Translated: r.Translated, Language: r.Language}
		}
	}

	views := make([]*TranslationView, 0, len(translations))
	for _, t := range translations {
		v := &TranslationView{
			Translation:  t,
			VerifiedBy:   users[t.VerifiedBy].withoutEmail(),
			RelatedTerms: []RelatedTerm{},
		}
		for _, id := range t.RelatedTerms {
			if r, ok := related[id]; ok {
				v.RelatedTerms = append(v.RelatedTerms, r)
			}
		}
		views = append(views, v)
	}

	return views, nil
}
