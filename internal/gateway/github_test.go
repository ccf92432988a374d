package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeContents simulates the versioned-object API: GET returns the current
// sha, PUT accepts a blob when the sha matches. failPuts makes the first n
// PUTs answer with a retryable status.
type fakeContents struct {
	sha       string
	content   []byte
	failPuts  int
	putStatus int
	gets      int
	puts      int
}

func (f *fakeContents) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/montsmed/sampleroom/contents/inventory.xlsx", func(w http.ResponseWriter, r *http.Request) {
		f.gets++
		if f.sha == "" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"sha": f.sha})
	})
	mux.HandleFunc("PUT /repos/montsmed/sampleroom/contents/inventory.xlsx", func(w http.ResponseWriter, r *http.Request) {
		f.puts++
		if f.failPuts > 0 {
			f.failPuts--
			status := f.putStatus
			if status == 0 {
				status = http.StatusConflict
			}
			w.WriteHeader(status)
			return
		}
		var body putRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(body.Content)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		f.content = decoded
		f.sha = "sha-" + time.Now().Format("150405.000000000")
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func newTestRemote(t *testing.T, f *fakeContents, attempts int) *GitHubRemote {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	g := NewGitHubRemote("montsmed/sampleroom", "inventory.xlsx", "main", "token", attempts, time.Millisecond, testLogger())
	g.apiBase = srv.URL
	return g
}

func TestCommitCreatesNewFile(t *testing.T) {
	f := &fakeContents{}
	g := newTestRemote(t, f, 3)

	err := g.Commit(context.Background(), []byte("workbook"), "update inventory")
	require.NoError(t, err)
	assert.Equal(t, []byte("workbook"), f.content)
	assert.Equal(t, 1, f.puts)
}

func TestCommitUpdatesExistingFile(t *testing.T) {
	f := &fakeContents{sha: "existing"}
	g := newTestRemote(t, f, 3)

	err := g.Commit(context.Background(), []byte("v2"), "update inventory")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), f.content)
}

// A commit that fails transiently attempts-1 times then succeeds on the last
// try must report overall success.
func TestCommitRetriesTransientThenSucceeds(t *testing.T) {
	f := &fakeContents{sha: "existing", failPuts: 2}
	g := newTestRemote(t, f, 3)

	err := g.Commit(context.Background(), []byte("data"), "update inventory")
	require.NoError(t, err)
	assert.Equal(t, 3, f.puts)
}

// A commit that fails on every attempt must surface CommitError with the
// last cause once the bound is spent, never retry indefinitely.
func TestCommitExhaustsAttempts(t *testing.T) {
	f := &fakeContents{sha: "existing", failPuts: 99, putStatus: http.StatusInternalServerError}
	g := newTestRemote(t, f, 3)

	err := g.Commit(context.Background(), []byte("data"), "update inventory")
	require.Error(t, err)

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, 3, commitErr.Attempts)
	assert.ErrorContains(t, commitErr.Last, "500")
	assert.Equal(t, 3, f.puts)
}

func TestCommitPermanentFailureStopsEarly(t *testing.T) {
	f := &fakeContents{sha: "existing", failPuts: 99, putStatus: http.StatusUnauthorized}
	g := newTestRemote(t, f, 5)

	err := g.Commit(context.Background(), []byte("data"), "update inventory")
	require.Error(t, err)

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, 1, commitErr.Attempts, "bad credentials must not be retried")
	assert.Equal(t, 1, f.puts)
}

func TestCommitContextCancelledBetweenAttempts(t *testing.T) {
	f := &fakeContents{sha: "existing", failPuts: 99}
	g := newTestRemote(t, f, 3)
	g.delay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Commit(ctx, []byte("data"), "update inventory")
	require.Error(t, err)

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.ErrorIs(t, commitErr.Last, context.Canceled)
}
