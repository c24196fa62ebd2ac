package workflow

import (
	"context"
	"strings"

	"github.com/abhisek/mathsim/internal/invoker"
	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/abhisek/mathsim/internal/prompts"
	"github.com/abhisek/mathsim/internal/session"
)

// problemHandlerName identifies standalone problem generation in the
// response cache.
const problemHandlerName = "workflow.GenerateProblem"

// Run dispatches payload to the workflow named by its workflow_type.
// Unknown or missing types run the full workflow.
func (o *Orchestrator) Run(ctx context.Context, payload map[string]any) (session.Envelope, error) {
	wt := session.WorkflowType(strings.ToLower(strings.TrimSpace(jsonlike.Text(payload["workflow_type"]))))
	switch wt {
	case session.WorkflowProblemOnly:
		return o.RunProblemOnly(ctx, payload)
	case session.WorkflowAnalysisOnly:
		return o.RunAnalysis(ctx, payload)
	case session.WorkflowPreTutor:
		return o.RunPreTutor(ctx, payload)
	}
	return o.RunFull(ctx, payload)
}

// RunFull runs the entire chain.
func (o *Orchestrator) RunFull(ctx context.Context, payload map[string]any) (session.Envelope, error) {
	return o.runGraph(ctx, withType(payload, session.WorkflowFull))
}

// RunPreTutor runs the chain up to and including the strategies step.
func (o *Orchestrator) RunPreTutor(ctx context.Context, payload map[string]any) (session.Envelope, error) {
	return o.runGraph(ctx, withType(payload, session.WorkflowPreTutor))
}

// RunAnalysis runs the chain over a caller-supplied problem and attempt.
func (o *Orchestrator) RunAnalysis(ctx context.Context, payload map[string]any) (session.Envelope, error) {
	for _, field := range []string{"problem", "student_attempt"} {
		if !jsonlike.Truthy(payload[field]) {
			return session.Envelope{}, &MissingInputError{Workflow: string(session.WorkflowAnalysisOnly), Field: field}
		}
	}
	return o.runGraph(ctx, withType(payload, session.WorkflowAnalysisOnly))
}

// RunProblemOnly generates a fresh problem and nothing else. A problem
// in the payload is ignored.
func (o *Orchestrator) RunProblemOnly(ctx context.Context, payload map[string]any) (session.Envelope, error) {
	s, err := session.Build(withType(payload, session.WorkflowProblemOnly))
	if err != nil {
		return session.Envelope{}, err
	}

	ctx, finish := o.begin(ctx, session.WorkflowProblemOnly)
	st := o.chain[0]
	err = o.runStepFunc(ctx, s, st, o.standaloneProblem)
	finish(err)
	if err != nil {
		return session.Envelope{}, err
	}

	sanitized := s.Sanitized()
	return session.Format(sanitized, session.WorkflowProblemOnly, session.CurrentStep(sanitized)), nil
}

// RunSession runs the chain and returns the sanitized state rather than
// the result envelope.
func (o *Orchestrator) RunSession(ctx context.Context, payload map[string]any) (map[string]any, error) {
	s, err := session.Build(payload)
	if err != nil {
		return nil, err
	}

	ctx, finish := o.begin(ctx, s.WorkflowType())
	err = o.runChain(ctx, s)
	finish(err)
	if err != nil {
		return nil, err
	}
	return s.Sanitized(), nil
}

func (o *Orchestrator) runGraph(ctx context.Context, payload map[string]any) (session.Envelope, error) {
	s, err := session.Build(payload)
	if err != nil {
		return session.Envelope{}, err
	}
	wt := s.WorkflowType()

	ctx, finish := o.begin(ctx, wt)
	err = o.runChain(ctx, s)
	finish(err)
	if err != nil {
		return session.Envelope{}, err
	}

	sanitized := s.Sanitized()
	current := session.StepInitialized
	switch {
	case wt == session.WorkflowProblemOnly || wt == session.WorkflowPreTutor:
		current = session.CurrentStep(sanitized)
	case len(sanitized) > 0:
		current = session.StepCompleted
	}
	return session.Format(sanitized, wt, current), nil
}

// standaloneProblem generates a problem through a cached handler keyed
// on grade and difficulty, replacing whatever problem the state held.
func (o *Orchestrator) standaloneProblem(ctx context.Context, s *session.State, st *step) (bool, error) {
	generate := func(ctx context.Context, args []any, _ map[string]any) (any, error) {
		grade, _ := args[0].(string)
		difficulty, _ := args[1].(string)
		res, err := o.invoker.InvokeWithPrompt(ctx, prompts.Problem(grade, difficulty), o.model(st.name), st.temperature, invoker.UseCache(false))
		if err != nil {
			return nil, err
		}
		return res.Value, nil
	}

	res, err := o.invoker.Invoke(ctx, problemHandlerName, generate,
		[]any{s.GradeLevel, s.Difficulty}, nil,
		invoker.UseCache(!s.Flag(session.MetaRefreshProblem)))
	if err != nil {
		return false, stepErr(st, err)
	}
	m, ok := res.Map()
	if !ok || len(m) == 0 {
		return false, &EmptyGenerationError{Step: st.name, Reason: "problem generation returned an empty payload"}
	}

	s.RecordCacheStatus(st.cacheKey, res.Cached)
	s.ReplaceArtifact(session.FieldProblem, m)
	delete(s.Metadata, session.MetaUseProvidedProblem)
	return true, nil
}

func (o *Orchestrator) runStepFunc(ctx context.Context, s *session.State, st *step, run func(context.Context, *session.State, *step) (bool, error)) error {
	alt := *st
	alt.run = run
	return o.runStep(ctx, s, &alt)
}

// withType returns a shallow copy of payload with workflow_type set.
func withType(payload map[string]any, wt session.WorkflowType) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out["workflow_type"] = string(wt)
	return out
}
