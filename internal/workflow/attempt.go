package workflow

import (
	"context"
	"strings"

	"github.com/abhisek/mathsim/internal/answer"
	"github.com/abhisek/mathsim/internal/invoker"
	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/abhisek/mathsim/internal/prompts"
	"github.com/abhisek/mathsim/internal/session"
	"github.com/rs/zerolog"
)

const likelyIncorrect = "likely_incorrect"

// simulateAttempt plays the student. When the simulated answer happens
// to equal the expected one, the call is repeated once with an explicit
// instruction to avoid it; the second answer is kept either way.
func (o *Orchestrator) simulateAttempt(ctx context.Context, s *session.State, st *step) (bool, error) {
	text := s.ProblemText()
	if text == "" {
		return false, &MissingPrerequisiteError{Step: st.name, Field: "problem.problem"}
	}

	target := s.MetaString(session.MetaTargetCorrectness)
	expected := s.ExpectedAnswer()
	style := s.MetaString(session.MetaErrorStyle)
	if style == "" {
		style = prompts.DefaultErrorStyle(s.Disability)
	}

	system, user := prompts.Attempt(prompts.AttemptInput{
		Disability:        s.Disability,
		Problem:           text,
		TargetCorrectness: target,
		ExpectedAnswer:    expected,
		ErrorStyle:        style,
	})

	// A cached attempt could replay an answer that was correct.
	cached := !strings.EqualFold(strings.TrimSpace(target), likelyIncorrect)

	attempt, err := o.callAttempt(ctx, s, st, system, user, cached)
	if err != nil {
		return false, err
	}

	if expected != "" {
		if got := strings.TrimSpace(jsonlike.Text(attempt["final_answer"])); answer.Equivalent(got, expected) {
			zerolog.Ctx(ctx).Info().
				Str("step", st.name).
				Str("final_answer", got).
				Msg("simulated answer matches the expected answer, retrying")

			attempt, err = o.callAttempt(ctx, s, st, system+"\n"+prompts.CollisionNote(expected), user, cached)
			if err != nil {
				return false, err
			}
		}
	}

	if _, ok := attempt["is_final_answer_intentionally_incorrect"]; !ok {
		attempt["is_final_answer_intentionally_incorrect"] = true
	}
	if _, ok := attempt["error_pattern"]; !ok {
		attempt["error_pattern"] = style
	}

	s.SetArtifact(session.FieldStudentAttempt, attempt)
	return true, nil
}

func (o *Orchestrator) callAttempt(ctx context.Context, s *session.State, st *step, system, user string, cached bool) (map[string]any, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
	res, err := o.invoker.InvokeChat(ctx, msgs, o.model(st.name), st.temperature, invoker.UseCache(cached))
	if err != nil {
		return nil, stepErr(st, err)
	}
	m, ok := res.Map()
	if !ok {
		return nil, &EmptyGenerationError{Step: st.name, Reason: "student attempt returned a non-object payload"}
	}
	s.RecordCacheStatus(st.cacheKey, res.Cached)
	return m, nil
}
