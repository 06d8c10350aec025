package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/dispatcher"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/document/gist"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/document/gisttest"
)

func newTestConfig(t *testing.T) (*Config, *gisttest.Server) {
	t.Helper()
	remote := gisttest.NewServer()
	remote.Token = "test-token"
	t.Cleanup(remote.Close)

	return &Config{
		Remote: RemoteConfig{BaseURL: remote.BaseURL(), Description: gist.DefaultDescription},
		Log:    LogConfig{Level: "error", File: filepath.Join(t.TempDir(), "gistsync.log")},
		Gist:   GistConfig{Token: "test-token"},
	}, remote
}

func TestBuildRequestFlagsOverrideConfig(t *testing.T) {
	cfg := &Config{Gist: GistConfig{Token: "conf-token", ID: "conf-id"}}

	req := buildRequest(cfg, oneShotOptions{gistID: "flag-id", setName: "work"}, dispatcher.ActionFetch)
	assert.Equal(t, dispatcher.Some("conf-token"), req.Token)
	assert.Equal(t, dispatcher.Some("flag-id"), req.GistID)
	assert.Equal(t, dispatcher.Some("work"), req.SetName)
	assert.Equal(t, dispatcher.ActionFetch, req.Action)

	req = buildRequest(&Config{}, oneShotOptions{}, dispatcher.ActionUpdate)
	assert.False(t, req.Token.Set)
	assert.False(t, req.GistID.Set)
	assert.False(t, req.SetName.Set)
}

func TestUpdateThenFetch(t *testing.T) {
	cfg, remote := newTestConfig(t)
	dir := t.TempDir()
	ctx := context.Background()

	src := filepath.Join(dir, "projects.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"projects":[{"title":"api"}]}`), 0600))

	var out bytes.Buffer
	require.NoError(t, runUpdate(ctx, cfg, oneShotOptions{file: src, setName: "work", json: true}, &out))
	assert.Equal(t, 1, remote.Calls("POST"))

	var created dispatcher.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	require.NotEmpty(t, created.GistID)

	out.Reset()
	require.NoError(t, runUpdate(ctx, cfg, oneShotOptions{file: src, setName: "work", gistID: created.GistID}, &out))
	assert.Equal(t, "Successfully backed up the DB.\n", out.String())
	assert.Equal(t, 1, remote.Calls("PATCH"))

	out.Reset()
	dst := filepath.Join(dir, "restored", "projects.json")
	require.NoError(t, runFetch(ctx, cfg, oneShotOptions{gistID: created.GistID, setName: "work", file: dst}, &out))
	assert.Contains(t, out.String(), "Restored set [work]")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"projects":[{"title":"api"}]}`, string(data))
}

func TestFetchWithoutGistIDFails(t *testing.T) {
	cfg, remote := newTestConfig(t)

	var out bytes.Buffer
	err := runFetch(context.Background(), cfg, oneShotOptions{json: true}, &out)
	assert.ErrorIs(t, err, errSyncFailed)
	assert.Contains(t, out.String(), `"type": "warning"`)
	assert.Zero(t, remote.TotalCalls())
}

func TestUpdateRejectsInvalidFile(t *testing.T) {
	cfg, remote := newTestConfig(t)

	src := filepath.Join(t.TempDir(), "projects.cson")
	require.NoError(t, os.WriteFile(src, []byte(`projects: []`), 0600))

	err := runUpdate(context.Background(), cfg, oneShotOptions{file: src}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Zero(t, remote.TotalCalls())
}
