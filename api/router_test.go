package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/xmd-bot/internal/app"
	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
)

type passthroughResolver struct{}

func (passthroughResolver) Resolve(ctx context.Context, rawURL string) string { return rawURL }

type staticHost struct{}

func (staticHost) Uptime() time.Duration { return 2 * time.Minute }

func (staticHost) Memory() (domain.MemoryStats, error) {
	return domain.MemoryStats{Total: 4 << 30, Free: 1 << 30}, nil
}

type staticConn bool

func (c staticConn) IsConnected() bool { return bool(c) }

// newProviderServer serves a fabdl-style response on /fabdl and fails everything else
func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fabdl" || !strings.Contains(r.URL.Query().Get("url"), "video/ok") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"video":"https://cdn.example/ok.mp4","title":"Cats"}`)
	}))
}

func setupTestRouter(t *testing.T, history domain.DownloadRepository, conn bool) *httptest.Server {
	t.Helper()
	providerServer := newProviderServer(t)
	t.Cleanup(providerServer.Close)

	config := domain.DefaultConfig()
	providers := infrastructure.DefaultProviders(map[string]string{
		infrastructure.EndpointHanggts: providerServer.URL + "/hanggts",
		infrastructure.EndpointSiputzx: providerServer.URL + "/siputzx",
		infrastructure.EndpointFabdl:   providerServer.URL + "/fabdl",
	})

	reg := prometheus.NewRegistry()
	metrics := infrastructure.NewMetrics(reg)
	client := infrastructure.NewJSONClient(nil, domain.BrowserUserAgent, time.Second)
	resolver := app.NewDownloadResolver(passthroughResolver{}, client, providers, metrics, nil)
	reporter := app.NewStatusReporter(staticHost{}, nil, config.Status.FallbackZone, config.Bot.Version, metrics, nil)

	router := SetupRouter(RouterDeps{
		Config:   config,
		Resolver: resolver,
		Reporter: reporter,
		History:  history,
		Conn:     staticConn(conn),
		Gatherer: reg,
		Logger:   zap.NewNop(),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestHealthAndReady(t *testing.T) {
	server := setupTestRouter(t, nil, false)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ready, err := http.Get(server.URL + "/ready")
	require.NoError(t, err)
	defer ready.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, ready.StatusCode)
}

func TestReady_Connected(t *testing.T) {
	server := setupTestRouter(t, nil, true)

	resp, err := http.Get(server.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResolve(t *testing.T) {
	server := setupTestRouter(t, nil, true)

	resp := postJSON(t, server.URL+"/api/v1/resolve", map[string]string{"url": "https://facebook.com/video/ok"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var media domain.MediaResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&media))
	assert.Equal(t, "https://cdn.example/ok.mp4", media.URL)
	assert.Equal(t, "Cats", media.Title)
	assert.Equal(t, infrastructure.ProviderFabdl, media.Provider)
}

func TestResolve_Errors(t *testing.T) {
	server := setupTestRouter(t, nil, true)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "missing field", body: map[string]string{}, status: http.StatusBadRequest},
		{name: "unsupported", body: map[string]string{"url": "not-a-url"}, status: http.StatusBadRequest},
		{name: "exhausted", body: map[string]string{"url": "https://facebook.com/video/private"}, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/api/v1/resolve", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestStatus(t *testing.T) {
	server := setupTestRouter(t, nil, true)

	resp, err := http.Get(server.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot domain.StatusSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.False(t, snapshot.PingKnown)
	assert.True(t, snapshot.MemoryKnown)
	assert.Equal(t, uint64(3<<30), snapshot.UsedMemBytes)

	text, err := http.Get(server.URL + "/api/v1/status?format=text")
	require.NoError(t, err)
	defer text.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(text.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "*404-XMD STATUS*")
	assert.Contains(t, buf.String(), "│ ⚡ *Speed:* N/A\n")
}

func TestDownloads_HistoryDisabled(t *testing.T) {
	server := setupTestRouter(t, nil, true)

	resp, err := http.Get(server.URL + "/api/v1/downloads")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDownloads_History(t *testing.T) {
	repo, err := infrastructure.NewSQLiteDownloadRepository(t.TempDir() + "/history.db")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	record := domain.NewDownloadRecord(&domain.InboundMessage{ChatID: "c", SenderID: "s"}, "https://facebook.com/video/ok")
	record.MarkResolved("https://facebook.com/video/ok", &domain.MediaResult{URL: "https://cdn.example/ok.mp4", Provider: infrastructure.ProviderFabdl})
	record.MarkDelivered(false)
	require.NoError(t, repo.Create(record))

	server := setupTestRouter(t, repo, true)

	resp, err := http.Get(server.URL + "/api/v1/downloads?status=delivered&limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []domain.DownloadRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)

	one, err := http.Get(server.URL + "/api/v1/downloads/" + record.ID)
	require.NoError(t, err)
	defer one.Body.Close()
	assert.Equal(t, http.StatusOK, one.StatusCode)

	missing, err := http.Get(server.URL + "/api/v1/downloads/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	bad, err := http.Get(server.URL + "/api/v1/downloads?status=bogus")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	stats, err := http.Get(server.URL + "/api/v1/downloads/stats")
	require.NoError(t, err)
	defer stats.Body.Close()
	var s domain.DownloadStats
	require.NoError(t, json.NewDecoder(stats.Body).Decode(&s))
	assert.Equal(t, int64(1), s.Delivered)
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestRouter(t, nil, true)

	resolve := postJSON(t, server.URL+"/api/v1/resolve", map[string]string{"url": "https://facebook.com/video/ok"})
	resolve.Body.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `xmd_provider_attempts_total{outcome="success",provider="API 3 (fallback)"} 1`)
}
