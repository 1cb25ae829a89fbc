package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netscan/api/models"
	"netscan/internal/history"
	"netscan/internal/network"
	"netscan/internal/results"
	"netscan/internal/runner"
	"netscan/internal/scan"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type linkSource struct {
	names []string
	err   error
}

func (s linkSource) Name() string                            { return "test" }
func (s linkSource) Links(context.Context) ([]string, error) { return s.names, s.err }

type env struct {
	dir     string
	script  string
	calls   atomic.Int32
	history *history.MemoryStore
	router  *gin.Engine
	runErr  error
	stderr  string
}

func newEnv(t *testing.T, links linkSource) *env {
	t.Helper()
	e := &env{dir: t.TempDir(), history: history.NewMemoryStore(50)}
	e.script = filepath.Join(e.dir, "netscan.sh")
	require.NoError(t, os.WriteFile(e.script, []byte("#!/bin/sh\n"), 0o755))

	fake := runner.Func(func(context.Context, runner.Command) (*runner.Result, error) {
		e.calls.Add(1)
		if e.runErr != nil {
			return &runner.Result{ExitCode: 1, Stderr: []byte(e.stderr)}, e.runErr
		}
		return &runner.Result{}, nil
	})

	lister := network.NewLister(links, time.Second)
	invoker := scan.NewInvoker(scan.Options{
		ScriptPath:       e.script,
		ScanType:         "1",
		Timeout:          5 * time.Minute,
		PrivilegeCommand: "sudo",
	}, lister, fake, e.history)

	e.router = NewRouter(Dependencies{
		Lister:    lister,
		Invoker:   invoker,
		History:   e.history,
		Results:   results.NewFile(filepath.Join(e.dir, "scan_results.json")),
		IndexPath: filepath.Join(e.dir, "index.html"),
	})
	return e
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) models.StatusResponse {
	t.Helper()
	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetInterfaces(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"lo", "eth0", "wlan0"}})

	w := e.do(http.MethodGet, "/api/interfaces", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"all", "eth0", "wlan0"}, list)
}

func TestGetInterfaces_EnumerationFailure(t *testing.T) {
	e := newEnv(t, linkSource{err: errors.New("ip: command not found")})

	w := e.do(http.MethodGet, "/api/interfaces", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["all"]`, w.Body.String())
}

func TestScan_Success(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})

	w := e.do(http.MethodPost, "/api/scan", `{"interface":"eth0"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"Scan completed."}`, w.Body.String())
	assert.EqualValues(t, 1, e.calls.Load())
}

func TestScan_AllValidatesEvenWhenEnumerationFails(t *testing.T) {
	e := newEnv(t, linkSource{err: errors.New("permission denied")})

	w := e.do(http.MethodPost, "/api/scan", `{"interface":"all"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScan_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing key", `{}`, "Missing 'interface' in request body."},
		{"empty body", ``, "Missing 'interface' in request body."},
		{"null interface", `{"interface":null}`, "Missing 'interface' in request body."},
		{"unknown interface", `{"interface":"eth9"}`, "Invalid interface selected."},
		{"loopback", `{"interface":"lo"}`, "Invalid interface selected."},
		{"shell metacharacters", `{"interface":"eth0 && reboot"}`, "Invalid interface selected."},
		{"malformed json", `{"interface":`, "Invalid JSON in request body."},
		{"wrong type", `{"interface":5}`, "Invalid JSON in request body."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, linkSource{names: []string{"lo", "eth0"}})

			w := e.do(http.MethodPost, "/api/scan", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeStatus(t, w)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.Nil(t, resp.Details)
			assert.Zero(t, e.calls.Load(), "script must not be invoked")
		})
	}
}

func TestScan_ScriptMissing(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	require.NoError(t, os.Remove(e.script))

	for _, body := range []string{`{"interface":"eth0"}`, `{`} {
		w := e.do(http.MethodPost, "/api/scan", body)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Scan script not found on server.", decodeStatus(t, w).Message)
	}
	assert.Zero(t, e.calls.Load())
}

func TestScan_ScriptFailureIncludesStderr(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	e.runErr = &runner.ExitError{Command: "sudo netscan.sh", ExitCode: 1, Stderr: []byte("boom")}
	e.stderr = "boom"

	w := e.do(http.MethodPost, "/api/scan", `{"interface":"eth0"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decodeStatus(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Scan script failed to execute.", resp.Message)
	require.NotNil(t, resp.Details)
	assert.Contains(t, *resp.Details, "boom")
}

func TestScan_Timeout(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	e.runErr = runner.ErrTimeout

	w := e.do(http.MethodPost, "/api/scan", `{"interface":"all"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Scan script timed out after 5 minutes.", decodeStatus(t, w).Message)
}

func TestScan_UnexpectedError(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	e.runErr = errors.New("fork/exec /usr/bin/sudo: permission denied")

	w := e.do(http.MethodPost, "/api/scan", `{"interface":"eth0"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected server error occurred: fork/exec /usr/bin/sudo: permission denied", decodeStatus(t, w).Message)
}

func TestScan_ServiceKeepsServingAfterFailure(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	e.runErr = errors.New("spawn failed")
	require.Equal(t, http.StatusInternalServerError, e.do(http.MethodPost, "/api/scan", `{"interface":"eth0"}`).Code)

	e.runErr = nil
	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/scan", `{"interface":"eth0"}`).Code)
}

func TestScan_RateLimited(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	deps := Dependencies{
		Lister:      network.NewLister(linkSource{names: []string{"eth0"}}, 0),
		Invoker:     scan.NewInvoker(scan.Options{ScriptPath: e.script, ScanType: "1"}, network.NewLister(linkSource{}, 0), runner.Func(func(context.Context, runner.Command) (*runner.Result, error) { return &runner.Result{}, nil }), nil),
		History:     e.history,
		Results:     results.NewFile(filepath.Join(e.dir, "scan_results.json")),
		ScanLimiter: NewScanLimiter(0.001, 1),
	}
	e.router = NewRouter(deps)

	assert.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/scan", `{"interface":"all"}`).Code)
	w := e.do(http.MethodPost, "/api/scan", `{"interface":"all"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "error", decodeStatus(t, w).Status)
}

func TestNewScanLimiterDisabled(t *testing.T) {
	assert.Nil(t, NewScanLimiter(0, 5))
}

func TestResults_CreatedWhenMissing(t *testing.T) {
	e := newEnv(t, linkSource{})

	w := e.do(http.MethodGet, "/scan_results.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	data, err := os.ReadFile(filepath.Join(e.dir, "scan_results.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestResults_ServedVerbatim(t *testing.T) {
	e := newEnv(t, linkSource{})
	content := "[\n  {\"ip\": \"192.168.1.20\", \"vendor\": \"Raspberry Pi\"}\n]\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "scan_results.json"), []byte(content), 0o644))

	w := e.do(http.MethodGet, "/scan_results.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestIndex(t *testing.T) {
	e := newEnv(t, linkSource{})
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/", "").Code)

	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "index.html"), []byte("<h1>netscan</h1>"), 0o644))
	w := e.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>netscan</h1>")
}

func TestScanHistory(t *testing.T) {
	e := newEnv(t, linkSource{names: []string{"eth0"}})
	e.do(http.MethodPost, "/api/scan", `{"interface":"eth0"}`)
	e.do(http.MethodPost, "/api/scan", `{"interface":"bogus"}`)

	w := e.do(http.MethodGet, "/api/scans?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var runs []models.ScanRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "InvalidInterface", runs[0].Outcome)
	assert.Equal(t, "bogus", runs[0].Interface)
	assert.Equal(t, "Success", runs[1].Outcome)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/scans?limit=zero", "").Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/scans?limit=0", "").Code)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, linkSource{})
	w := e.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
