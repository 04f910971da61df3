package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type dialectInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Functions   []string `json:"functions"`
	Default     bool     `json:"default"`
}

type translateRequest struct {
	Dialect     string             `json:"dialect"`
	Expressions []string           `json:"expressions"`
	Bindings    map[string]float64 `json:"bindings"`
}

type translateResult struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type translateResponse struct {
	Dialect string            `json:"dialect"`
	Results []translateResult `json:"results"`
}

type evaluateRequest struct {
	Expression string             `json:"expression"`
	Bindings   map[string]float64 `json:"bindings"`
	Exact      bool               `json:"exact"`
}

type evaluateResponse struct {
	Expression string `json:"expression"`
	Value      string `json:"value"`
	Mode       string `json:"mode"`
}

type convertRequest struct {
	Circuit  string             `json:"circuit"`
	Target   string             `json:"target"`
	Bindings map[string]float64 `json:"bindings"`
}

type convertResponse struct {
	Target string `json:"target"`
	Output string `json:"output"`
}

type historyEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Dialect    string    `json:"dialect"`
	Input      string    `json:"input"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	names := symbolic.List()
	out := make([]dialectInfo, 0, len(names))
	for _, name := range names {
		d, _ := symbolic.Get(name)
		out = append(out, dialectInfo{
			Name:        d.GetName(),
			Description: d.GetDescription(),
			Functions:   d.FunctionNames(),
			Default:     name == s.cfg.Dialect,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Expressions) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("no expressions given"))
		return
	}
	dialect := strings.ToLower(req.Dialect)
	if dialect == "" {
		dialect = s.cfg.Dialect
	}
	if _, ok := symbolic.Get(dialect); !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown dialect %q (available: %s)", req.Dialect, strings.Join(symbolic.List(), ", ")))
		return
	}

	bindings := render.MergeBindings(s.bindings(r), req.Bindings)
	resp := translateResponse{Dialect: dialect, Results: make([]translateResult, len(req.Expressions))}
	for i, input := range req.Expressions {
		started := time.Now()
		out, err := render.Source(dialect, input, bindings, s.cfg.Precision)
		s.record(r, state.KindTranslate, dialect, input, out, err, started)
		resp.Results[i] = translateResult{Input: input, Output: out}
		if err != nil {
			resp.Results[i].Error = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := "numeric"
	if req.Exact {
		mode = "decimal"
	}

	started := time.Now()
	value, err := render.Source(mode, req.Expression, render.MergeBindings(s.bindings(r), req.Bindings), s.cfg.Precision)
	s.record(r, state.KindEvaluate, mode, req.Expression, value, err, started)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Expression: req.Expression, Value: value, Mode: mode})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Target == "" {
		req.Target = render.TargetQuil
	}
	target, err := render.ParseTarget(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	started := time.Now()
	c, err := circuit.Parse([]byte(req.Circuit))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := render.Circuit(c, target, render.MergeBindings(s.bindings(r), req.Bindings))
	s.record(r, state.KindConvert, target, c.String(), out, err, started)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Target: target, Output: out})
}

func (s *Server) handleGetBindings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bindings(r))
}

// handlePutBindings replaces the session bindings. Configured bindings
// still apply underneath.
func (s *Server) handlePutBindings(w http.ResponseWriter, r *http.Request) {
	var bindings map[string]float64
	if !decodeJSON(w, r, &bindings) {
		return
	}
	if err := s.saveSessionBindings(w, r, bindings); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, render.MergeBindings(s.cfg.Bindings, bindings))
}

func (s *Server) handleDeleteBindings(w http.ResponseWriter, r *http.Request) {
	if err := s.saveSessionBindings(w, r, nil); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("history is disabled"))
		return
	}
	q := r.URL.Query()
	f := state.Filter{Kind: state.Kind(q.Get("kind")), Dialect: q.Get("dialect"), Limit: defaultHistoryLimit}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		f.Limit = historyLimit(n)
	}

	entries, err := s.cfg.Store.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{
			ID:         e.ID,
			Kind:       string(e.Kind),
			Dialect:    e.Dialect,
			Input:      e.Input,
			Output:     e.Output,
			Error:      e.Error,
			DurationMS: e.Duration.Milliseconds(),
			CreatedAt:  e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// historyLimit clamps a requested limit. The store treats zero as
// unlimited; the API never does.
func historyLimit(n int) int {
	switch {
	case n <= 0:
		return defaultHistoryLimit
	case n > maxHistoryLimit:
		return maxHistoryLimit
	}
	return n
}

// bindings returns the configured bindings overlaid with the session's.
func (s *Server) bindings(r *http.Request) map[string]float64 {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// A cookie signed with another key yields a fresh session.
		s.logger.Debug("ignoring invalid session", "error", err)
	}
	own, _ := sess.Values[sessionBindings].(map[string]float64)
	return render.MergeBindings(s.cfg.Bindings, own)
}

func (s *Server) saveSessionBindings(w http.ResponseWriter, r *http.Request, bindings map[string]float64) error {
	sess, _ := s.sessions.Get(r, sessionName)
	if bindings == nil {
		delete(sess.Values, sessionBindings)
	} else {
		sess.Values[sessionBindings] = bindings
	}
	return sess.Save(r, w)
}

func (s *Server) record(r *http.Request, kind state.Kind, dialect, input, out string, opErr error, started time.Time) {
	if s.cfg.Store == nil {
		return
	}
	e := state.Entry{Kind: kind, Dialect: dialect, Input: input, Output: out, Duration: time.Since(started)}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if _, err := s.cfg.Store.Record(r.Context(), e); err != nil {
		s.logger.Warn("failed to record history", "kind", kind, "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
