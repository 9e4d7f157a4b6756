package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "config.yaml")
	database := filepath.Join(t.TempDir(), "civiclink.db")
	content := "server:\n  jwt_secret: test-secret\nstorage:\n  driver: sqlite\n  dsn: " + database + "\n"
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))

	return filename
}

func TestUserCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "user", "create", "--config", cfg,
		"--email", "Olu@Example.com", "--password", "secret1",
		"--first-name", "Olu", "--last-name", "Adeyemi", "--role", "organizer")
	require.NoError(t, err)
	assert.Contains(t, out, "olu@example.com (organizer) for Olu Adeyemi")

	out, err = run(t, "user", "set-role", "--config", cfg, "olu@example.com", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "olu@example.com is now admin")

	_, err = run(t, "user", "set-role", "--config", cfg, "nobody@example.com", "admin")
	assert.Error(t, err)
}

func TestTranslationStatsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/translations/stats/overview", r.URL.Path)
		_, _ = w.Write([]byte(`{"stats":{"totalTranslations":4,"verifiedTranslations":3,"totalUsage":12,"languageCount":2,"categoryCount":3,"verificationRate":75}}`))
	}))
	defer srv.Close()

	out, err := run(t, "translations", "stats", "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "verified:      3 (75.0%)")
}

func TestClaimsSubmitCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"claim":{"id":"claim-1","status":"pending"}}`))
	}))
	defer srv.Close()

	out, err := run(t, "claims", "submit", "--api", srv.URL, "--token", "abc", "Mail", "ballots", "expire", "after", "10", "days")
	require.NoError(t, err)
	assert.Contains(t, out, "submitted claim-1 (pending)")
}

func TestClaimsListCommand(t *testing.T) {
	recent := time.Now().Add(-3 * time.Hour).UTC().Format(time.RFC3339)
	old := time.Now().Add(-20 * 24 * time.Hour).UTC().Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "verified", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"claims":[` +
			`{"id":"claim-1","claim":"Polls close at 8pm","language":"en","status":"verified","verdict":"true","createdAt":"` + recent + `"},` +
			`{"id":"claim-2","claim":"Mail ballots expire","language":"es","status":"verified","verdict":"false","createdAt":"` + old + `"}` +
			`],"pagination":{"page":1,"limit":10,"total":2,"pages":1}}`))
	}))
	defer srv.Close()

	out, err := run(t, "claims", "list", "--api", srv.URL, "--status", "verified")
	require.NoError(t, err)
	assert.Contains(t, out, "claim-1\t3 hours ago\ten\tverified\ttrue\tPolls close at 8pm")
	assert.Contains(t, out, "claim-2\t3 weeks ago")
	assert.Contains(t, out, "page 1 of 1, 2 claims")

	_, err = run(t, "claims", "list", "--api", srv.URL, "--since", "soon")
	assert.Error(t, err)
}

func TestClaimsListSinceWalksPages(t *testing.T) {
	at := func(age time.Duration) string {
		return time.Now().Add(-age).UTC().Format(time.RFC3339)
	}

	pages := map[string]string{
		"1": `{"claims":[` +
			`{"id":"claim-1","claim":"Polls close at 8pm","language":"en","status":"pending","verdict":"unverified","createdAt":"` + at(time.Hour) + `"},` +
			`{"id":"claim-2","claim":"Drop boxes are closed","language":"en","status":"pending","verdict":"unverified","createdAt":"` + at(2*time.Hour) + `"}` +
			`],"pagination":{"page":1,"limit":2,"total":5,"pages":3}}`,
		"2": `{"claims":[` +
			`{"id":"claim-3","claim":"Mail ballots expire","language":"es","status":"pending","verdict":"unverified","createdAt":"` + at(3*24*time.Hour) + `"},` +
			`{"id":"claim-4","claim":"Voter ids changed","language":"en","status":"pending","verdict":"unverified","createdAt":"` + at(30*24*time.Hour) + `"}` +
			`],"pagination":{"page":2,"limit":2,"total":5,"pages":3}}`,
	}

	requested := make([]string, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		_, _ = w.Write([]byte(pages[page]))
	}))
	defer srv.Close()

	out, err := run(t, "claims", "list", "--api", srv.URL, "--limit", "2", "--since", "1w")
	require.NoError(t, err)
	assert.Contains(t, out, "claim-1")
	assert.Contains(t, out, "claim-2")
	assert.Contains(t, out, "claim-3\t3 days ago")
	assert.NotContains(t, out, "claim-4")
	assert.Contains(t, out, "3 claims submitted in the last 1w")
	assert.Equal(t, []string{"1", "2"}, requested)
}
