package web

import (
	"errors"
	"fmt"
	"net/http"

	"civiclink/pkg/apperr"
	"civiclink/pkg/log"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// handleError renders every failure as a JSON body carrying at least a message
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.errorResponse(err, c)

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		log.Logger().Errorf(nil, "error writing error response, %s", werr)
	}
}

func (s *Server) errorResponse(err error, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, errorResponse{Message: "Route not found"}
		}
		return he.Code, errorResponse{Message: fmt.Sprint(he.Message)}
	}

	var e *apperr.Error
	if errors.As(err, &e) && e.Kind != apperr.KindInternal {
		return e.Kind.HTTPStatus(), errorResponse{Message: e.Message, Errors: e.Fields}
	}

	log.Logger().Errorf(requestLabels(c), "unexpected error, %s", err)
	sentry.CaptureException(err)

	body := errorResponse{Message: "Server error"}
	if s.cfg.Server.Development {
		body.Error = err.Error()
	}

	return http.StatusInternalServerError, body
}
