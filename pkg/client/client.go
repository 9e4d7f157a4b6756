// Package client calls the CivicLink HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civiclink/pkg/api/service"
	"civiclink/pkg/apperr"
	"civiclink/pkg/log"
	"civiclink/pkg/models"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Error is a failed API response
type Error struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors"`
}

func (e *Error) Error() string {
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for _, f := range e.Errors {
			fields = append(fields, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		return fmt.Sprintf("%d %s (%s)", e.Status, e.Message, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

type ClaimQuery struct {
	Status    models.ClaimStatus
	Verdict   models.Verdict
	Language  models.Language
	Community string
	Search    string
	Page      int
	Limit     int
}

func (q ClaimQuery) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if len(value) > 0 {
			v.Set(key, value)
		}
	}
	set("status", string(q.Status))
	set("verdict", string(q.Verdict))
	set("language", string(q.Language))
	set("community", q.Community)
	set("search", q.Search)
	if q.Page > 0 {
		v.Set("page", fmt.Sprint(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	return v
}

// Login exchanges credentials for a token, which the client then sends with every request
func (c *Client) Login(ctx context.Context, email, password string) (*service.Session, error) {
	var session service.Session
	err := c.request(ctx, http.MethodPost, "/api/auth/login", service.LoginRequest{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}

	c.token = session.Token
	return &session, nil
}

func (c *Client) Claims(ctx context.Context, query ClaimQuery) (*service.ClaimPage, error) {
	path := "/api/claims"
	if v := query.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}

	var page service.ClaimPage
	if err := c.request(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) SubmitClaim(ctx context.Context, req service.SubmitClaimRequest) (*service.ClaimView, error) {
	var response struct {
		Claim *service.ClaimView `json:"claim"`
	}
	if err := c.request(ctx, http.MethodPost, "/api/claims", req, &response); err != nil {
		return nil, err
	}
	return response.Claim, nil
}

func (c *Client) TranslationStats(ctx context.Context) (*service.TranslationStats, error) {
	var response struct {
		Stats *service.TranslationStats `json:"stats"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/translations/stats/overview", nil, &response); err != nil {
		return nil, err
	}
	return response.Stats, nil
}

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request, %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request, %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(c.token) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.Logger().Debugf(nil, "civiclink request: %s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling civiclink api, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		if err = json.NewDecoder(resp.Body).Decode(apiErr); err != nil || len(apiErr.Message) == 0 {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error parsing civiclink response, %w", err)
	}

	return nil
}
