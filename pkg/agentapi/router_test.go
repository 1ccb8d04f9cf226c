package agentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/appstore/pkg/agent"
	"github.com/windowsadmins/appstore/pkg/metrics"
)

type stubAgent struct {
	got    []agent.InstallRequest
	result agent.InstallResult
}

func (s *stubAgent) Install(_ context.Context, req agent.InstallRequest) agent.InstallResult {
	s.got = append(s.got, req)
	return s.result
}
func (s *stubAgent) Privileged() bool    { return true }
func (s *stubAgent) ActiveInstalls() int { return 0 }
func (s *stubAgent) SessionDir() string  { return "/tmp/session-x" }

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:50123"
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestInstall_StatusMapping(t *testing.T) {
	one := 1
	tests := []struct {
		name       string
		result     agent.InstallResult
		wantCode   int
		wantStatus string
	}{
		{"success", agent.InstallResult{Outcome: agent.OutcomeSuccess, Message: "ok"}, http.StatusOK, "success"},
		{"failure", agent.InstallResult{Outcome: agent.OutcomeFailure, Message: "exit 1", ExitCode: &one}, http.StatusInternalServerError, "failure"},
		{"rejected", agent.InstallResult{Outcome: agent.OutcomeRejected, Message: "not elevated"}, http.StatusForbidden, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAgent{result: tt.result}
			rec, out := do(t, NewRouter(stub, Options{}), http.MethodPost, "/install",
				`{"targetUrl":"http://x/a.exe","installType":"silent","silentArgs":"/S","displayName":"Tool"}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, out["status"])
			assert.Equal(t, string(tt.result.Outcome), out["outcome"])
			assert.Equal(t, tt.result.Message, out["message"])
			require.Len(t, stub.got, 1)
			assert.Equal(t, agent.InstallRequest{
				TargetURL:   "http://x/a.exe",
				InstallType: "silent",
				SilentArgs:  "/S",
				DisplayName: "Tool",
			}, stub.got[0])
		})
	}
}

func TestInstall_ShortFieldNames(t *testing.T) {
	stub := &stubAgent{result: agent.InstallResult{Outcome: agent.OutcomeSuccess}}
	rec, _ := do(t, NewRouter(stub, Options{}), http.MethodPost, "/install",
		`{"url":"https://x/b.msi","args":"/quiet /norestart","name":"B"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.got, 1)
	assert.Equal(t, "https://x/b.msi", stub.got[0].TargetURL)
	assert.Equal(t, "/quiet /norestart", stub.got[0].SilentArgs)
	assert.Equal(t, "B", stub.got[0].DisplayName)
}

func TestInstall_ManualReportsArtifactPath(t *testing.T) {
	stub := &stubAgent{result: agent.InstallResult{Outcome: agent.OutcomeSuccess, LocalArtifactPath: "/tmp/session-x/Office.exe"}}
	_, out := do(t, NewRouter(stub, Options{}), http.MethodPost, "/install",
		`{"targetUrl":"http://x/Office.exe","installType":"manual"}`)

	assert.Equal(t, "/tmp/session-x/Office.exe", out["localArtifactPath"])
}

func TestInstall_MalformedInput(t *testing.T) {
	bodies := []string{
		`not json`,
		`{}`,
		`{"targetUrl":"   "}`,
		`{"targetUrl":"file:///etc/passwd"}`,
		`{"installType":"silent"}`,
	}
	for _, body := range bodies {
		stub := &stubAgent{}
		rec, out := do(t, NewRouter(stub, Options{}), http.MethodPost, "/install", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "error", out["status"], body)
		assert.Empty(t, stub.got, body)
	}
}

func TestLoopbackOnly(t *testing.T) {
	stub := &stubAgent{result: agent.InstallResult{Outcome: agent.OutcomeSuccess}}
	h := NewRouter(stub, Options{})

	req := httptest.NewRequest(http.MethodPost, "/install", strings.NewReader(`{"url":"http://x/a.exe"}`))
	req.RemoteAddr = "192.168.1.20:40000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, stub.got)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "[::1]:40000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus(t *testing.T) {
	rec, out := do(t, NewRouter(&stubAgent{}, Options{}), http.MethodGet, "/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["privileged"])
	assert.Equal(t, "/tmp/session-x", out["sessionDir"])
	assert.NotEmpty(t, out["version"])
}

func TestMetricsRoute(t *testing.T) {
	metrics.ObserveInstall("silent", "success", 0)
	h := NewRouter(&stubAgent{}, Options{Registry: metrics.NewRegistry()})

	rec, _ := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appstore_agent_installs_total")
}

func TestValidateListenAddr(t *testing.T) {
	for _, ok := range []string{"127.0.0.1:9001", "[::1]:9001", "localhost:9001"} {
		assert.NoError(t, ValidateListenAddr(ok), ok)
	}
	for _, bad := range []string{":9001", "0.0.0.0:9001", "10.0.0.5:9001", "nonsense"} {
		assert.Error(t, ValidateListenAddr(bad), bad)
	}
}
