package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/leapstack-labs/leapq/internal/testutil"

	_ "github.com/leapstack-labs/leapq/pkg/dialects/canonical"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/decimal"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/numeric"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/quil"
)

const rotationCircuit = `qubits: 1
operations:
  - gate: RX
    params: ["2*theta"]
    qubits: [0]
`

func newTestServer(t *testing.T, store state.Store) (*httptest.Server, *http.Client) {
	t.Helper()
	s, err := New(Config{
		Dialect:       "quil",
		Precision:     16,
		Bindings:      map[string]float64{"theta": 0.5},
		SessionSecret: "test-secret-test-secret-test-sec",
		Store:         store,
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, c := newTestServer(t, nil)
	resp, err := c.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDialects(t *testing.T) {
	ts, c := newTestServer(t, nil)

	var got []dialectInfo
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodGet, ts.URL+"/api/dialects", nil, &got))
	names := make([]string, len(got))
	for i, d := range got {
		names[i] = d.Name
		if d.Name == "quil" {
			assert.True(t, d.Default)
		}
	}
	assert.Equal(t, []string{"canonical", "decimal", "numeric", "qiskit", "quil"}, names)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		req        translateRequest
		wantStatus int
		want       []translateResult
	}{
		{
			name:       "default dialect",
			req:        translateRequest{Expressions: []string{"2*theta", "cos(x)"}},
			wantStatus: http.StatusOK,
			want: []translateResult{
				{Input: "2*theta", Output: "2*%theta"},
				{Input: "cos(x)", Output: "COS(%x)"},
			},
		},
		{
			name:       "configured bindings apply",
			req:        translateRequest{Dialect: "numeric", Expressions: []string{"4*theta"}},
			wantStatus: http.StatusOK,
			want:       []translateResult{{Input: "4*theta", Output: "2"}},
		},
		{
			name:       "request bindings override",
			req:        translateRequest{Dialect: "NUMERIC", Expressions: []string{"4*theta"}, Bindings: map[string]float64{"theta": 1}},
			wantStatus: http.StatusOK,
			want:       []translateResult{{Input: "4*theta", Output: "4"}},
		},
		{
			name:       "per expression errors",
			req:        translateRequest{Dialect: "numeric", Expressions: []string{"x"}},
			wantStatus: http.StatusOK,
			want:       []translateResult{{Input: "x", Error: "unbound symbol"}},
		},
		{
			name:       "unknown dialect",
			req:        translateRequest{Dialect: "cirq", Expressions: []string{"x"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty request",
			req:        translateRequest{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, c := newTestServer(t, nil)
			var resp translateResponse
			status := doJSON(t, c, http.MethodPost, ts.URL+"/api/translate", tt.req, &resp)
			require.Equal(t, tt.wantStatus, status)
			if tt.want == nil {
				return
			}
			require.Len(t, resp.Results, len(tt.want))
			for i, want := range tt.want {
				got := resp.Results[i]
				assert.Equal(t, want.Input, got.Input)
				assert.Equal(t, want.Output, got.Output)
				if want.Error != "" {
					assert.Contains(t, got.Error, want.Error)
				} else {
					assert.Empty(t, got.Error)
				}
			}
		})
	}
}

func TestTranslate_RejectsUnknownFields(t *testing.T) {
	ts, c := newTestServer(t, nil)
	resp, err := c.Post(ts.URL+"/api/translate", "application/json", strings.NewReader(`{"expression": "x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvaluate(t *testing.T) {
	ts, c := newTestServer(t, nil)

	var got evaluateResponse
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPost, ts.URL+"/api/evaluate",
		evaluateRequest{Expression: "1/3", Exact: true}, &got))
	assert.Equal(t, "0.3333333333333333", got.Value)
	assert.Equal(t, "decimal", got.Mode)

	var errResp map[string]string
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(t, c, http.MethodPost, ts.URL+"/api/evaluate",
		evaluateRequest{Expression: "1/0"}, &errResp))
	assert.NotEmpty(t, errResp["error"])

	errResp = nil
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(t, c, http.MethodPost, ts.URL+"/api/evaluate",
		evaluateRequest{Expression: "3^20000000", Exact: true}, &errResp))
	assert.Contains(t, errResp["error"], "out of range")
}

func TestConvert(t *testing.T) {
	ts, c := newTestServer(t, nil)

	var got convertResponse
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPost, ts.URL+"/api/convert",
		convertRequest{Circuit: rotationCircuit, Target: "qasm"}, &got))
	assert.Equal(t, "qasm", got.Target)
	assert.Contains(t, got.Output, "rx(1) q[0];")

	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPost, ts.URL+"/api/convert",
		convertRequest{Circuit: rotationCircuit, Bindings: map[string]float64{"theta": 2}}, &got))
	assert.Equal(t, "quil", got.Target)
	assert.Contains(t, got.Output, "RX(4) 0")

	var errResp map[string]string
	assert.Equal(t, http.StatusBadRequest, doJSON(t, c, http.MethodPost, ts.URL+"/api/convert",
		convertRequest{Circuit: "qubits: [", Target: "quil"}, &errResp))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, c, http.MethodPost, ts.URL+"/api/convert",
		convertRequest{Circuit: rotationCircuit, Target: "cirq"}, &errResp))
}

func TestSessionBindings(t *testing.T) {
	ts, c := newTestServer(t, nil)

	var bindings map[string]float64
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPut, ts.URL+"/api/bindings",
		map[string]float64{"theta": 3, "phi": 1}, &bindings))
	assert.Equal(t, map[string]float64{"theta": 3, "phi": 1}, bindings)

	var resp translateResponse
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPost, ts.URL+"/api/translate",
		translateRequest{Dialect: "numeric", Expressions: []string{"theta + phi"}}, &resp))
	assert.Equal(t, "4", resp.Results[0].Output)

	// A client without the cookie only sees configured bindings.
	other := &http.Client{}
	bindings = nil
	require.Equal(t, http.StatusOK, doJSON(t, other, http.MethodGet, ts.URL+"/api/bindings", nil, &bindings))
	assert.Equal(t, map[string]float64{"theta": 0.5}, bindings)

	require.Equal(t, http.StatusNoContent, doJSON(t, c, http.MethodDelete, ts.URL+"/api/bindings", nil, nil))
	bindings = nil
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodGet, ts.URL+"/api/bindings", nil, &bindings))
	assert.Equal(t, map[string]float64{"theta": 0.5}, bindings)
}

func TestHistory(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "history.db")))
	t.Cleanup(func() { _ = store.Close() })

	ts, c := newTestServer(t, store)
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPost, ts.URL+"/api/translate",
		translateRequest{Expressions: []string{"theta", "phi"}}, &translateResponse{}))
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodPost, ts.URL+"/api/evaluate",
		evaluateRequest{Expression: "1+1"}, &evaluateResponse{}))

	var entries []historyEntry
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodGet, ts.URL+"/api/history?kind=translate", nil, &entries))
	assert.Len(t, entries, 2)

	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodGet, ts.URL+"/api/history?limit=1", nil, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "evaluate", entries[0].Kind)

	var errResp map[string]string
	assert.Equal(t, http.StatusBadRequest, doJSON(t, c, http.MethodGet, ts.URL+"/api/history?limit=x", nil, &errResp))

	ts2, c2 := newTestServer(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, c2, http.MethodGet, ts2.URL+"/api/history", nil, &errResp))
}

func TestHistoryLimit(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, defaultHistoryLimit},
		{-3, defaultHistoryLimit},
		{1, 1},
		{maxHistoryLimit, maxHistoryLimit},
		{maxHistoryLimit + 1, maxHistoryLimit},
		{1 << 30, maxHistoryLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, historyLimit(tt.n), "limit %d", tt.n)
	}
}

func TestHistory_ZeroLimitUsesDefault(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "history.db")))
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	for i := 0; i < defaultHistoryLimit+5; i++ {
		_, err := store.Record(ctx, state.Entry{Kind: state.KindTranslate, Dialect: "quil", Input: "x"})
		require.NoError(t, err)
	}

	ts, c := newTestServer(t, store)
	var entries []historyEntry
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodGet, ts.URL+"/api/history?limit=0", nil, &entries))
	assert.Len(t, entries, defaultHistoryLimit)

	entries = nil
	require.Equal(t, http.StatusOK, doJSON(t, c, http.MethodGet, ts.URL+"/api/history?limit=100000", nil, &entries))
	assert.Len(t, entries, defaultHistoryLimit+5)
}

func TestServeListenerShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, err := New(Config{Dialect: "quil", Precision: 16, ShutdownGrace: time.Second})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
