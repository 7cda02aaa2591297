package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/gentexts/internal/archive"
	"pkg.jsn.cam/gentexts/internal/backend"
	"pkg.jsn.cam/gentexts/internal/server"
	"pkg.jsn.cam/gentexts/internal/worldtime"
	"pkg.jsn.cam/gentexts/pkg/gentexts/httpx"
	"pkg.jsn.cam/gentexts/pkg/gentexts/protocol"
)

const worldTimeReply = `{"abbreviation":"-04","datetime":"2026-10-16T09:30:00-04:00","timezone":"America/Manaus","unixtime":1792157400,"utc_offset":"-04:00"}`

// startStack runs a fake world time API and a gentexts server backed by
// the bbolt archive at path
func startStack(t *testing.T, path string) (*httptest.Server, *backend.Backend) {
	t.Helper()

	timeAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/timezone/America/Manaus" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(worldTimeReply))
	}))
	t.Cleanup(timeAPI.Close)

	clock, err := worldtime.NewClient(timeAPI.URL, time.Second, nil)
	require.NoError(t, err)

	store, err := archive.Open(path)
	require.NoError(t, err)

	b := backend.New(backend.Config{Seed: 99}, clock, store, nil)
	srv := httptest.NewServer(server.New(b, nil))
	t.Cleanup(srv.Close)

	return srv, b
}

func call(t *testing.T, method, url string, v any) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, httpx.Decode(resp, v))
}

// TestServerRoundTrip drives every public route over real HTTP
func TestServerRoundTrip(t *testing.T) {
	t.Parallel()

	srv, b := startStack(t, filepath.Join(t.TempDir(), "history.db"))
	defer b.Close()

	var version protocol.VersionResponse
	call(t, http.MethodGet, srv.URL+"/api/version", &version)
	ok, err := protocol.IsCompatibleVersion(version.Version, protocol.Version)
	require.NoError(t, err)
	require.True(t, ok)

	var list protocol.TextListResponse
	call(t, http.MethodGet, srv.URL+"/api/texts", &list)
	assert.Len(t, list.Texts, list.Count)

	var random protocol.RandomTextResponse
	call(t, http.MethodGet, srv.URL+"/api/texts/random", &random)
	assert.Regexp(t, `^([a-z]{3,10} ){5,20}$`, random.Text)

	var tm protocol.TimeResponse
	call(t, http.MethodGet, srv.URL+"/api/time", &tm)
	assert.Equal(t, "America/Manaus, 2026-10-16T09:30:00-04:00", tm.Title)
	assert.Equal(t, int64(1792157400), tm.UnixTime)

	var history protocol.HistoryResponse
	call(t, http.MethodGet, srv.URL+"/api/history", &history)
	// the one-shot list plus the pool created by the random text
	require.Len(t, history.Entries, 2)
	assert.Equal(t, list.ID, history.Entries[1].ID)

	var entry protocol.HistoryEntry
	call(t, http.MethodGet, srv.URL+"/api/history/"+list.ID, &entry)
	assert.Equal(t, list.Texts, entry.Texts)

	err = func() error {
		resp, err := http.Get(srv.URL + "/api/history/missing")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return httpx.Decode(resp, &json.RawMessage{})
	}()
	var statusErr *httpx.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

// TestHistorySurvivesRestart reopens the bbolt archive with a new server
func TestHistorySurvivesRestart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	srv, b := startStack(t, path)
	var first protocol.TextListResponse
	call(t, http.MethodPost, srv.URL+"/api/texts/refresh", &first)
	srv.Close()
	require.NoError(t, b.Close())

	srv, b = startStack(t, path)
	defer b.Close()

	var entry protocol.HistoryEntry
	call(t, http.MethodGet, srv.URL+"/api/history/"+first.ID, &entry)
	assert.Equal(t, first.Texts, entry.Texts)
	assert.Equal(t, first.Count, entry.Count)
}
