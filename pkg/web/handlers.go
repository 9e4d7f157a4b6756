package web

import (
	"net/http"
	"strconv"
	"time"

	"civiclink/pkg/api/service"
	"civiclink/pkg/models"

	"github.com/labstack/echo/v4"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"service":   "CivicLink Backend API",
	})
}

type languageResponse struct {
	Code models.Language `json:"code"`
	Name string          `json:"name"`
}

func (s *Server) languagesHandler(c echo.Context) error {
	languages := make([]languageResponse, 0, len(models.Languages))
	for _, l := range models.Languages {
		languages = append(languages, languageResponse{Code: l, Name: l.NativeName()})
	}
	return c.JSON(http.StatusOK, map[string]any{"languages": languages})
}

func pageRequest(c echo.Context) service.PageRequest {
	return service.PageRequest{
		Page:  c.QueryParam("page"),
		Limit: c.QueryParam("limit"),
	}
}

func (s *Server) listClaimsHandler(c echo.Context) error {
	page, err := s.claims.List(c.Request().Context(), service.ClaimListRequest{
		PageRequest: pageRequest(c),
		Status:      c.QueryParam("status"),
		Verdict:     c.QueryParam("verdict"),
		Language:    c.QueryParam("language"),
		Community:   c.QueryParam("community"),
		Search:      c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) trendingClaimsHandler(c echo.Context) error {
	trending, err := s.claims.Trending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"trendingClaims": trending})
}

func (s *Server) getClaimHandler(c echo.Context) error {
	claim, err := s.claims.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"claim": claim})
}

func (s *Server) submitClaimHandler(c echo.Context) error {
	var req service.SubmitClaimRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	claim, err := s.claims.Submit(c.Request().Context(), principal(c), req)
	if err != nil {
		return err
	}
	s.metrics.ClaimsSubmitted.Inc()

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Claim submitted successfully",
		"claim":   claim,
	})
}

func (s *Server) reviewClaimHandler(c echo.Context) error {
	var req service.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	claim, err := s.claims.Review(c.Request().Context(), principal(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	s.metrics.ClaimReviews.WithLabelValues(string(claim.Status)).Inc()

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Claim reviewed successfully",
		"claim":   claim,
	})
}

func (s *Server) claimFeedbackHandler(c echo.Context) error {
	var req service.ClaimFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := s.claims.AddFeedback(c.Request().Context(), principal(c), c.Param("id"), req); err != nil {
		return err
	}
	s.metrics.FeedbackTotal.WithLabelValues("claim").Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: "Feedback submitted successfully"})
}

func (s *Server) shareClaimHandler(c echo.Context) error {
	if err := s.claims.TrackShare(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Share tracked successfully"})
}

func (s *Server) listTranslationsHandler(c echo.Context) error {
	page, err := s.translations.List(c.Request().Context(), service.TranslationListRequest{
		PageRequest: pageRequest(c),
		Language:    c.QueryParam("language"),
		Category:    c.QueryParam("category"),
		Verified:    c.QueryParam("verified"),
		Search:      c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) translationCategoriesHandler(c echo.Context) error {
	categories, err := s.translations.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) translationStatsHandler(c echo.Context) error {
	stats, err := s.translations.StatsOverview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) getTranslationHandler(c echo.Context) error {
	translation, err := s.translations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"translation": translation})
}

func (s *Server) createTranslationHandler(c echo.Context) error {
	var req service.CreateTranslationRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	translation, err := s.translations.Create(c.Request().Context(), principal(c), req)
	if err != nil {
		return err
	}
	s.metrics.TranslationsCreated.Inc()

	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "Translation created successfully",
		"translation": translation,
	})
}

type verifyRequest struct {
	Verified *bool `json:"verified"`
}

func (s *Server) verifyTranslationHandler(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	translation, err := s.translations.SetVerified(c.Request().Context(), principal(c), c.Param("id"), req.Verified)
	if err != nil {
		return err
	}
	s.metrics.TranslationsVerified.WithLabelValues(strconv.FormatBool(translation.Verified)).Inc()

	state := "unverified"
	if translation.Verified {
		state = "verified"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Translation " + state + " successfully",
		"translation": translation,
	})
}

func (s *Server) translationFeedbackHandler(c echo.Context) error {
	var req service.TranslationFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := s.translations.AddFeedback(c.Request().Context(), principal(c), c.Param("id"), req); err != nil {
		return err
	}
	s.metrics.FeedbackTotal.WithLabelValues("translation").Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: "Feedback submitted successfully"})
}

func (s *Server) registerHandler(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	session, err := s.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   session.Token,
		"user":    session.User,
	})
}

func (s *Server) loginHandler(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	session, err := s.accounts.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   session.Token,
		"user":    session.User,
	})
}

func (s *Server) meHandler(c echo.Context) error {
	user, err := s.accounts.Me(c.Request().Context(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (s *Server) updateProfileHandler(c echo.Context) error {
	var req service.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := s.accounts.UpdateProfile(c.Request().Context(), principal(c), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (s *Server) changePasswordHandler(c echo.Context) error {
	var req service.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := s.accounts.ChangePassword(c.Request().Context(), principal(c), req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
