package workflow

import (
	"context"

	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/abhisek/mathsim/internal/prompts"
	"github.com/abhisek/mathsim/internal/session"
)

// Step names, in chain order. They are also the keys of the per-step
// model overrides.
const (
	StepGenerateProblem    = "generate_problem"
	StepSimulateAttempt    = "simulate_attempt"
	StepAnalyzeAttempt     = "analyze_attempt"
	StepStrategies         = "strategies"
	StepTutor              = "tutor"
	StepConsistency        = "consistency"
	StepAdaptiveDifficulty = "adaptive_difficulty"
	StepIdentifyDisability = "identify_disability"
)

// Steps lists the chain in execution order.
var Steps = []string{
	StepGenerateProblem,
	StepSimulateAttempt,
	StepAnalyzeAttempt,
	StepStrategies,
	StepTutor,
	StepConsistency,
	StepAdaptiveDifficulty,
	StepIdentifyDisability,
}

// step is one link of the chain. run reports whether it did any work;
// a step that returns false left the state untouched.
type step struct {
	name        string
	cacheKey    string
	field       session.Field
	temperature float64
	run         func(ctx context.Context, s *session.State, st *step) (bool, error)
}

func (o *Orchestrator) buildChain() []*step {
	return []*step{
		{name: StepGenerateProblem, cacheKey: "generate_problem", field: session.FieldProblem, temperature: 0.5, run: o.generateProblem},
		{name: StepSimulateAttempt, cacheKey: "simulate_attempt", field: session.FieldStudentAttempt, temperature: 1.0, run: o.simulateAttempt},
		{name: StepAnalyzeAttempt, cacheKey: "analyze_attempt", field: session.FieldThoughtAnalysis, temperature: 0.3, run: o.analyzeAttempt},
		{name: StepStrategies, cacheKey: "strategies", field: session.FieldStrategies, temperature: 0.4, run: o.strategies},
		{name: StepTutor, cacheKey: "tutor", field: session.FieldTutorSession, temperature: 0.7, run: o.tutor},
		{name: StepConsistency, cacheKey: "consistency", field: session.FieldConsistencyReport, temperature: 0.2, run: o.consistency},
		{name: StepAdaptiveDifficulty, cacheKey: "adaptive", field: session.FieldAdaptivePlan, temperature: 0.3, run: o.adaptiveDifficulty},
		{name: StepIdentifyDisability, cacheKey: "identify", field: session.FieldDisabilityAnalysis, temperature: 0.2, run: o.identifyDisability},
	}
}

// lastStep maps a stop_after value to the index of the last step allowed
// to run. Unknown values run the whole chain.
func lastStep(stopAfter string) int {
	switch stopAfter {
	case session.StopAnalysis:
		return 2
	case session.StopStrategies:
		return 3
	case session.StopTutor:
		return 4
	case session.StopConsistency:
		return 5
	case session.StopAdaptive:
		return 6
	}
	return len(Steps) - 1
}

func (o *Orchestrator) generateProblem(ctx context.Context, s *session.State, st *step) (bool, error) {
	if s.Flag(session.MetaUseProvidedProblem) {
		return false, nil
	}
	if s.WorkflowType() == session.WorkflowAnalysisOnly && s.Has(session.FieldProblem) {
		return false, nil
	}

	m, err := o.callPrompt(ctx, s, st, prompts.Problem(s.GradeLevel, s.Difficulty), !s.Flag(session.MetaRefreshProblem))
	if err != nil {
		return false, err
	}
	if len(m) == 0 {
		return false, &EmptyGenerationError{Step: st.name, Reason: "problem generation returned an empty payload"}
	}
	s.SetArtifact(session.FieldProblem, m)
	return true, nil
}

func (o *Orchestrator) analyzeAttempt(ctx context.Context, s *session.State, st *step) (bool, error) {
	if !s.Has(session.FieldProblem) || !s.Has(session.FieldStudentAttempt) {
		return false, nil
	}

	p := prompts.Analysis(s.Disability, s.ProblemText(), jsonlike.Dumps(s.Artifact(session.FieldStudentAttempt)))
	return o.produce(ctx, s, st, p)
}

func (o *Orchestrator) strategies(ctx context.Context, s *session.State, st *step) (bool, error) {
	if !s.Has(session.FieldThoughtAnalysis) {
		return false, nil
	}

	p := prompts.Strategies(
		s.Disability,
		s.ProblemText(),
		jsonlike.Dumps(s.Artifact(session.FieldStudentAttempt)),
		jsonlike.Dumps(s.Artifact(session.FieldThoughtAnalysis)),
	)
	return o.produce(ctx, s, st, p)
}

func (o *Orchestrator) tutor(ctx context.Context, s *session.State, st *step) (bool, error) {
	if !s.Has(session.FieldThoughtAnalysis) {
		return false, nil
	}

	p := prompts.Tutor(
		s.Disability,
		s.ProblemText(),
		jsonlike.Dumps(s.Artifact(session.FieldStudentAttempt)),
		jsonlike.Dumps(s.Artifact(session.FieldThoughtAnalysis)),
	)
	return o.produce(ctx, s, st, p)
}

func (o *Orchestrator) consistency(ctx context.Context, s *session.State, st *step) (bool, error) {
	if !s.Has(session.FieldProblem) || !s.Has(session.FieldStudentAttempt) {
		return false, nil
	}

	p := prompts.Consistency(
		s.ProblemText(),
		s.Disability,
		jsonlike.Dumps(s.Artifact(session.FieldStudentAttempt)),
		s.ExpectedAnswer(),
	)
	return o.produce(ctx, s, st, p)
}

func (o *Orchestrator) adaptiveDifficulty(ctx context.Context, s *session.State, st *step) (bool, error) {
	if len(s.StudentHistory) == 0 {
		return false, nil
	}

	return o.produce(ctx, s, st, prompts.Adaptive(jsonlike.Dumps(s.StudentHistory), s.Difficulty))
}

func (o *Orchestrator) identifyDisability(ctx context.Context, s *session.State, st *step) (bool, error) {
	if s.StudentResponse == "" || s.ProblemText() == "" {
		return false, nil
	}

	return o.produce(ctx, s, st, prompts.Identify(s.ProblemText(), s.StudentResponse))
}

// produce runs a single-prompt step and stores its artifact.
func (o *Orchestrator) produce(ctx context.Context, s *session.State, st *step, prompt string) (bool, error) {
	m, err := o.callPrompt(ctx, s, st, prompt, true)
	if err != nil {
		return false, err
	}
	s.SetArtifact(st.field, m)
	return true, nil
}
