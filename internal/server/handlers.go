package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abhisek/mathsim/internal/adaptive"
	"github.com/abhisek/mathsim/internal/consistency"
	"github.com/abhisek/mathsim/internal/improvement"
	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/abhisek/mathsim/internal/session"
	"github.com/abhisek/mathsim/internal/workflow"
	"github.com/rs/zerolog"
)

// requestError is a rejected request body.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"workflows": session.WorkflowTypes,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFull(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, sessionRequest)
	if !ok {
		return
	}
	env, err := s.orch.RunFull(r.Context(), payload)
	s.respond(w, r, env, err)
}

func (s *Server) handleGenerateProblem(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, problemRequest)
	if !ok {
		return
	}
	env, err := s.orch.RunProblemOnly(r.Context(), payload)
	s.respond(w, r, env, err)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, analysisRequest)
	if !ok {
		return
	}
	env, err := s.orch.RunAnalysis(r.Context(), payload)
	s.respond(w, r, env, err)
}

func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, sessionRequest)
	if !ok {
		return
	}
	env, err := s.orch.Run(r.Context(), payload)
	s.respond(w, r, env, err)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, sessionRequest)
	if !ok {
		return
	}
	state, err := s.orch.RunSession(r.Context(), payload)
	s.respond(w, r, state, err)
}

func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, consistencyRequest)
	if !ok {
		return
	}
	for _, field := range []string{"problem", "disability", "student_attempt", "expected_answer"} {
		if !jsonlike.Truthy(payload[field]) {
			writeDetail(w, http.StatusBadRequest, "problem, disability, student_attempt, and expected_answer are required")
			return
		}
	}

	problem := payload["problem"]
	if m, ok := problem.(map[string]any); ok && jsonlike.Truthy(m["problem"]) {
		problem = m["problem"]
	}
	report, err := consistency.ValidateInput(
		jsonlike.Text(problem),
		jsonlike.Text(payload["disability"]),
		payload["student_attempt"],
		jsonlike.Text(payload["expected_answer"]),
	)
	s.respond(w, r, report, err)
}

func (s *Server) handleAdaptive(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decode(w, r, adaptiveRequest)
	if !ok {
		return
	}
	history := payload["student_history"]
	if history == nil {
		history = []any{}
	}
	current := strings.TrimSpace(jsonlike.Text(payload["current_difficulty"]))
	if current == "" {
		current = session.DefaultDifficulty
	}
	rec, err := adaptive.RecommendInput(history, current)
	s.respond(w, r, rec, err)
}

// handleImprovement accepts any JSON body. A past_attempts string is used
// as is; any other body is passed to the chain as JSON text.
func (s *Server) handleImprovement(w http.ResponseWriter, r *http.Request) {
	body, err := readJSON(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	logs := jsonlike.Dumps(body)
	if m, ok := body.(map[string]any); ok {
		if text, ok := m["past_attempts"].(string); ok {
			logs = text
		}
	}
	report, err := s.improvement.Run(r.Context(), logs)
	s.respond(w, r, report, err)
}

// decode reads a JSON object body and checks it against schema. On
// failure the error response is written and ok is false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema *llm.Schema) (map[string]any, bool) {
	body, err := readJSON(w, r)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	payload, ok := body.(map[string]any)
	if !ok {
		s.fail(w, r, &requestError{msg: "request body must be a JSON object"})
		return nil, false
	}
	if err := llm.ValidateValue(schema, payload); err != nil {
		s.fail(w, r, &requestError{msg: err.Error()})
		return nil, false
	}
	return payload, true
}

func readJSON(w http.ResponseWriter, r *http.Request) (any, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &requestError{msg: fmt.Sprintf("read body: %v", err)}
	}
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &requestError{msg: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return body, nil
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	ev := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	writeDetail(w, status, err.Error())
}

func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr),
		workflow.IsInputError(err),
		errors.Is(err, improvement.ErrNoAttempts):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
