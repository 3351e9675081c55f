package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourwithmark/engagement/config"
	"github.com/tourwithmark/engagement/store"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "likes.db")
	body := `{"database": {"Driver": "sqlite", "Path": "` + filepath.ToSlash(dbPath) + `"}, "log": {"Level": "silent"}}`
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	path, dbPath := writeTestConfig(t)

	out, err := run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date (sqlite)")

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	_, err = run(t, "migrate", "--config", path)
	require.NoError(t, err)
}

func TestReport(t *testing.T) {
	path, _ := writeTestConfig(t)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	st, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	_, err = st.ToggleLike(context.Background(), "trip-to-peru", "F1")
	require.NoError(t, err)
	_, err = st.RecordPageView(context.Background(), store.PageViewInput{Path: "/blog/trip-to-peru", Fingerprint: "F1"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := run(t, "report", "--config", path)
	require.NoError(t, err)

	var report struct {
		Analytics struct {
			TotalStats store.TotalStats `json:"totalStats"`
		} `json:"analytics"`
		Likes []store.PostLikes `json:"likes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.EqualValues(t, 1, report.Analytics.TotalStats.TotalPageViews)
	assert.Equal(t, []store.PostLikes{{PostID: "trip-to-peru", Count: 1}}, report.Likes)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := run(t, "migrate", "--config", path)
	require.Error(t, err)
}
