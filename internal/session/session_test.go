package session

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/openinghours/internal/engine/places"
	"github.com/rendis/openinghours/internal/model"
)

func placesServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/findplacefromtext/json"):
			io.WriteString(w, `{"status":"OK","candidates":[{"place_id":"P1"}]}`)
		case strings.HasSuffix(r.URL.Path, "/details/json"):
			io.WriteString(w, `{"status":"OK","result":{"name":"Kiosk","opening_hours":{"open_now":false}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPaths(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 5, 0, time.UTC)
	db, log := Paths("out", now)
	assert.Equal(t, filepath.Join("out", "openinghours_20261018_093005.db"), db)
	assert.Equal(t, filepath.Join("out", "openinghours_20261018_093005.log"), log)
}

func TestOpenRequiresDBPath(t *testing.T) {
	_, err := Open(Options{Console: io.Discard})
	assert.ErrorContains(t, err, "db path")
}

func TestRunMemoryConsole(t *testing.T) {
	srv := placesServer(t)
	var out bytes.Buffer

	s, err := Open(Options{Memory: true, Console: &out})
	require.NoError(t, err)
	defer s.Close()
	assert.NotEmpty(t, s.ID)

	p := model.RunParams{
		APIKey:      "k",
		Shops:       []model.Shop{{Index: 0, Name: "Kiosk"}},
		Concurrency: 1,
	}
	stats, err := s.Run(context.Background(), p, nil, places.WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.DetailsStored.Load())

	st, err := s.Store.GetState(context.Background(), "0.name")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "Kiosk", st.Val)

	assert.Contains(t, out.String(), "session done")
}

func TestRunSQLiteWithLogFile(t *testing.T) {
	srv := placesServer(t)
	dir := t.TempDir()
	dbPath, logPath := Paths(filepath.Join(dir, "runs"), time.Now())

	s, err := Open(Options{DBPath: dbPath, LogPath: logPath})
	require.NoError(t, err)

	p := model.RunParams{
		APIKey:      "k",
		Shops:       []model.Shop{{Index: 0, Name: "Kiosk"}},
		DelayMillis: 0,
	}
	_, err = s.Run(context.Background(), p, nil, places.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.FileExists(t, dbPath)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"`+s.ID+`"`)
	assert.Contains(t, string(data), `"message":"session start"`)
}

func TestRunRejectsBadNumbering(t *testing.T) {
	s, err := Open(Options{Memory: true, Console: io.Discard})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Run(context.Background(), model.RunParams{APIKey: "k", SlotNumbering: "odd"}, nil)
	assert.Error(t, err)
}
