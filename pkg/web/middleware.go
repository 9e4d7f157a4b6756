package web

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/apperr"
	"civiclink/pkg/log"

	"github.com/labstack/echo/v4"
)

const principalKey = "civiclink-principal"

// observe logs and measures each request once its response is written
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		elapsed := time.Since(start)
		status := c.Response().Status

		route := c.Path()
		if len(route) == 0 {
			route = "unmatched"
		}
		s.metrics.observeRequest(c.Request().Method, route, status, elapsed.Seconds())

		labels := requestLabels(c)
		labels["status"] = strconv.Itoa(status)
		labels["elapsed"] = elapsed.String()

		logger := log.Logger()
		if status >= 500 {
			logger.Warningf(labels, "%s %s", c.Request().Method, c.Request().URL.Path)
		} else {
			logger.Debugf(labels, "%s %s", c.Request().Method, c.Request().URL.Path)
		}

		return nil
	}
}

func requestLabels(c echo.Context) log.Labels {
	return log.Labels{
		"method": c.Request().Method,
		"path":   c.Request().URL.Path,
		"ip":     c.RealIP(),
	}
}

// authenticate requires a valid bearer token for a user that still exists. The principal's
// role is read from the stored account so role changes apply immediately.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if len(token) == 0 {
			return apperr.Unauthenticated("No token, authorization denied")
		}

		p, err := s.tokens.Verify(token)
		if err != nil {
			return err
		}

		user, err := s.users.User(c.Request().Context(), p.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthenticated("Token is not valid")
		}
		if err != nil {
			return fmt.Errorf("error loading authenticated user, %w", err)
		}

		c.Set(principalKey, &auth.Principal{UserID: user.ID, Role: user.Role})
		return next(c)
	}
}

func principal(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}
