package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.github.com"

// githubAccept is the GitHub REST media type header value.
const githubAccept = "application/vnd.github+json"

// contentsResponse carries the piece of the contents API response we need:
// the current object's version token.
type contentsResponse struct {
	SHA string `json:"sha"`
}

// putRequest mirrors the contents API commit body.
type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

// permanentError marks a failure that retrying cannot fix (bad credentials,
// missing repository).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// GitHubRemote commits the exported table to one file in a GitHub repository
// through the contents API: fetch the current blob's sha (the version token),
// then PUT the new content with that sha and a commit message. Conflicts,
// server errors, and network errors are retried with a fixed delay up to the
// configured attempt bound.
type GitHubRemote struct {
	apiBase  string
	repo     string // "owner/name"
	path     string
	branch   string
	token    string
	attempts int
	delay    time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func NewGitHubRemote(repo, path, branch, token string, attempts int, delay time.Duration, logger *slog.Logger) *GitHubRemote {
	if attempts < 1 {
		attempts = 1
	}
	return &GitHubRemote{
		apiBase:  defaultAPIBase,
		repo:     repo,
		path:     path,
		branch:   branch,
		token:    token,
		attempts: attempts,
		delay:    delay,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// Commit pushes content as a new version of the configured file. It returns
// nil on success, or a *CommitError carrying the last cause once the attempt
// bound is spent or a permanent failure is seen.
func (g *GitHubRemote) Commit(ctx context.Context, content []byte, message string) error {
	var last error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		if attempt > 1 {
			g.logger.Warn("retrying remote commit", "attempt", attempt, "error", last)
			select {
			case <-ctx.Done():
				return &CommitError{Attempts: attempt - 1, Last: ctx.Err()}
			case <-time.After(g.delay):
			}
		}

		sha, err := g.currentSHA(ctx)
		if err == nil {
			err = g.put(ctx, content, message, sha)
		}
		if err == nil {
			g.logger.Info("remote commit succeeded", "attempt", attempt, "path", g.path)
			return nil
		}

		last = err
		var perm *permanentError
		if errors.As(err, &perm) {
			return &CommitError{Attempts: attempt, Last: perm.err}
		}
	}
	return &CommitError{Attempts: g.attempts, Last: last}
}

// currentSHA fetches the version token of the target file. A missing file is
// not an error: the commit simply creates it.
func (g *GitHubRemote) currentSHA(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL()+"?ref="+g.branch, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build contents request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch current version: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		var body contentsResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("failed to decode contents response: %w", err)
		}
		return body.SHA, nil
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &permanentError{err: fmt.Errorf("fetch version: %s", resp.Status)}
	default:
		return "", fmt.Errorf("fetch version: unexpected status %s", resp.Status)
	}
}

func (g *GitHubRemote) put(ctx context.Context, content []byte, message, sha string) error {
	body, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  g.branch,
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("failed to encode commit body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build commit request: %w", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send commit: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		// Version token went stale between fetch and put; the next attempt
		// refreshes it.
		return fmt.Errorf("commit conflict: %s", resp.Status)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &permanentError{err: fmt.Errorf("commit rejected: %s", resp.Status)}
	default:
		return fmt.Errorf("commit: unexpected status %s", resp.Status)
	}
}

func (g *GitHubRemote) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", g.apiBase, g.repo, g.path)
}

func (g *GitHubRemote) setHeaders(req *http.Request) {
	req.Header.Set("Accept", githubAccept)
	req.Header.Set("Authorization", "Bearer "+g.token)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	if err := body.Close(); err != nil {
		slog.Error("failed to close response body", "error", err)
	}
}
