// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/appinsight/insightviz/internal/config"
	"github.com/appinsight/insightviz/internal/metrics"
)

const storiesDoc = `{"themes": [{"name": "Onboarding", "stories": [{"title": "Tutorial", "priority": "high"}]}]}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClassifyCmd(t *testing.T) {
	out, err := run(t, storiesDoc, "classify", "-")
	require.NoError(t, err)
	assert.Equal(t, "user-stories\n", out)

	out, err = run(t, `{"user_segments": []}`, "--convention", "raw", "classify", "-")
	require.NoError(t, err)
	assert.Equal(t, "user-segmentation\n", out)

	out, err = run(t, `{"user_segments": []}`, "classify", "-")
	require.NoError(t, err)
	assert.Equal(t, "unknown\n", out)
}

func TestVisualizeCmd(t *testing.T) {
	path := writeFile(t, "stories.json", storiesDoc)

	out, err := run(t, "", "visualize", "--verify", path)
	require.NoError(t, err)

	var got struct {
		Tag         string         `json:"tag"`
		Convention  string         `json:"convention"`
		Extractor   string         `json:"extractor"`
		PassThrough bool           `json:"passThrough"`
		View        map[string]any `json:"view"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "user-stories", got.Tag)
	assert.Equal(t, "dashboard", got.Convention)
	assert.Equal(t, "user-stories", got.Extractor)
	assert.False(t, got.PassThrough)
	assert.Equal(t, 1.0, got.View["totalStories"])
}

func TestVisualizeCmd_YAMLFile(t *testing.T) {
	path := writeFile(t, "store.yaml", "storeAnalysis:\n  overallScore: 6\n  criteriaEvaluations: []\n")

	out, err := run(t, "", "--convention", "raw", "visualize", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"extractor": "raw-store-analysis"`)
	assert.Contains(t, out, `"overallScore": 6`)
}

func TestVisualizeCmd_MalformedDocument(t *testing.T) {
	_, err := run(t, `{"ratingDistribution": [5, 4]}`, "visualize", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed field")
}

func TestValidateCmd(t *testing.T) {
	out, err := run(t, storiesDoc, "validate", "-")
	require.NoError(t, err)
	assert.Equal(t, "user-stories: valid\n", out)

	_, err = run(t, `{"themes": ["just text"]}`, "validate", "-")
	assert.Error(t, err)

	_, err = run(t, `{"nothing": true}`, "validate", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches no dashboard schema")
}

func TestSchemasCmd(t *testing.T) {
	out, err := run(t, "", "schemas")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dashboard\n  1. problem-analysis"), out)
	assert.NotContains(t, out, "raw\n")

	out, err = run(t, "", "schemas", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "raw\n  1. problem-analysis")
	assert.Contains(t, out, "6. store-analysis")
}

func TestConfigCmd(t *testing.T) {
	out, err := run(t, "", "--convention", "raw", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "convention: raw")
	assert.Contains(t, out, "level: error")
}

func TestRootCmd_RejectsUnknownConvention(t *testing.T) {
	_, err := run(t, storiesDoc, "--convention", "legacy", "classify", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown convention")
}

func TestNewServer_RegistersTools(t *testing.T) {
	cfg := config.Default()
	a := &app{cfg: &cfg, logger: zaptest.NewLogger(t)}

	server, err := a.newServer(metrics.NewRecorder())
	require.NoError(t, err)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	session, err := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 3)
}

func TestServe_HTTPStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	a := &app{cfg: &cfg, logger: zaptest.NewLogger(t)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
