package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnis-dev/omnis/internal/banner"
	"github.com/omnis-dev/omnis/internal/config"
	"github.com/omnis-dev/omnis/internal/logger"
	"github.com/omnis-dev/omnis/internal/model"
	"github.com/omnis-dev/omnis/internal/tracking"
)

// execute runs the root command in-process with a config written to a temp dir.
func execute(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)
	if cfg.Tracking.LogDir != "" && !filepath.IsAbs(cfg.Tracking.LogDir) {
		cfg.Tracking.LogDir = filepath.Join(dir, cfg.Tracking.LogDir)
	}
	require.NoError(t, config.Save(cfgPath, cfg))

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(append([]string{"--config", cfgPath, "--log-level", "error"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile("../../testdata/recommendations.json")
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedCommand_Plain(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.Endpoint = feedServer(t).URL

	out, _, err := execute(t, cfg, "", "feed")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/6] Premium Savings Plus (15% p.a.)")
	assert.Contains(t, out, "id=high-performer-INV001")
	assert.Contains(t, out, "₦1,200,000")
}

func TestFeedCommand_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.Endpoint = feedServer(t).URL

	out, _, err := execute(t, cfg, "", "feed", "--json")
	require.NoError(t, err)

	var cards []model.Card
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 6)
	assert.Equal(t, "premium-savings-PRD003", cards[0].ID)
	assert.Equal(t, "premium-upgrade", cards[5].ID)
}

func TestFeedCommand_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recommendations":{"status":"success","user_data_found":false}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Feed.Endpoint = srv.URL
	_, stderr, err := execute(t, cfg, "", "feed")
	assert.Error(t, err)
	assert.Contains(t, stderr, "couldn't find your profile")
}

func TestTrackCommand(t *testing.T) {
	queries := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Tracking.Endpoint = srv.URL

	out, _, err := execute(t, cfg, "", "track", "--token", "t1", "--recommendation", "r1", "--action", "converted")
	require.NoError(t, err)
	assert.Equal(t, "converted sent\n", out)
	got := <-queries
	assert.Contains(t, got, "action=converted")
	assert.Contains(t, got, "token_id=t1")
}

func TestTrackCommand_SkipsWithoutIDs(t *testing.T) {
	cfg := config.Default()
	cfg.Tracking.Endpoint = "http://127.0.0.1:1"

	out, _, err := execute(t, cfg, "", "track", "--token", "t1")
	require.NoError(t, err)
	assert.Equal(t, "clicked skipped\n", out)
}

func TestTrackCommand_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Tracking.Endpoint = srv.URL
	cfg.Tracking.LogDir = ""

	out, _, err := execute(t, cfg, "", "track", "--token", "t", "--recommendation", "r")
	assert.Error(t, err)
	assert.Equal(t, "clicked failed\n", out)
}

func TestTrackCommand_BadAction(t *testing.T) {
	_, _, err := execute(t, config.Default(), "", "track", "--action", "liked")
	assert.Error(t, err)
}

func TestBannerCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Tracking.LogDir = ""
	cfg.Banner.InitialDelay = 10 * time.Millisecond

	script := strings.Join([]string{"wait 100ms", "tap", "state", "more", "state", "bogus", "quit"}, "\n")
	out, _, err := execute(t, cfg, script, "banner")
	require.NoError(t, err)

	assert.Contains(t, out, "banner: collapsed")
	assert.Contains(t, out, "banner: expanded")
	assert.Contains(t, out, "flow: opened")
	assert.Contains(t, out, "banner: hidden")
	assert.Contains(t, out, `unknown command "bogus"`)
}

func TestBannerCommand_Scale(t *testing.T) {
	cfg := config.Default()
	cfg.Tracking.LogDir = ""

	out, _, err := execute(t, cfg, "quit\n", "banner", "--scale", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "waiting 3ms")

	_, _, err = execute(t, cfg, "quit\n", "banner", "--scale", "0")
	assert.Error(t, err)
}

func TestRunBanner_Swipe(t *testing.T) {
	var out bytes.Buffer
	cfg := banner.DefaultConfig()
	cfg.InitialDelay = time.Millisecond

	flows := newFlowManager(nil, logger.Discard())
	err := runBanner(strings.NewReader("wait 50ms\nswipe 80\nstate\nswipe -80\nswipe -80\nstate\n"), &out, cfg, flows, logger.Discard())
	require.NoError(t, err)

	lines := out.String()
	assert.Contains(t, lines, "banner: expanded (timer pending: false)")
	assert.Contains(t, lines, "banner: hidden (timer pending: false)")
}

func TestScaleDuration(t *testing.T) {
	assert.Equal(t, 30*time.Millisecond, scaleDuration(30*time.Second, 1000))
}

func TestNewTrackerUsesMemoryDedupe(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer srv.Close()

	cfg := config.Default()
	cfg.Tracking.Endpoint = srv.URL
	cfg.Tracking.LogDir = ""
	tr, closeStore := newTracker(cfg, logger.Discard())
	defer closeStore()

	ev := tracking.Event{TokenID: "t", RecommendationID: "r", Action: tracking.ActionConverted}
	assert.Equal(t, tracking.OutcomeSent, tr.Track(context.Background(), ev))
	assert.Equal(t, tracking.OutcomeDuplicate, tr.Track(context.Background(), ev))
	assert.Equal(t, int32(1), calls.Load())
}
