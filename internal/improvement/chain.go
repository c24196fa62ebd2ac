// Package improvement runs the follow-up chain over a student's past
// attempt logs: summarize, pose a new problem, simulate the student on
// it, judge the improvement and suggest practice.
package improvement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mathsim/internal/invoker"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/abhisek/mathsim/internal/prompts"
	"github.com/rs/zerolog"
)

// ErrNoAttempts is returned when the chain is started without any logs.
var ErrNoAttempts = errors.New("past attempts are required")

// Report is the chain's output.
type Report struct {
	Summary             string   `json:"summary"`
	GeneratedProblem    string   `json:"generated_problem"`
	StudentAttempt      string   `json:"student_attempt"`
	ImprovementAnalysis string   `json:"improvement_analysis"`
	PracticeProblems    []string `json:"practice_problems"`
}

// Config holds the model settings shared by every step.
type Config struct {
	Model       string
	Temperature float64
}

// Chain runs the improvement steps through the shared invoker.
type Chain struct {
	invoker *invoker.Invoker
	config  Config
	logger  zerolog.Logger
}

// New creates a Chain. An empty model uses the provider's default.
func New(iv *invoker.Invoker, cfg Config, logger zerolog.Logger) *Chain {
	return &Chain{invoker: iv, config: cfg, logger: logger}
}

// Run executes the chain. Each step's reply feeds the next prompt.
func (c *Chain) Run(ctx context.Context, pastAttempts string) (*Report, error) {
	if strings.TrimSpace(pastAttempts) == "" {
		return nil, ErrNoAttempts
	}

	r := &Report{}
	var err error

	if r.Summary, err = c.text(ctx, "improvement_summary", prompts.Summary(pastAttempts)); err != nil {
		return nil, err
	}
	if r.GeneratedProblem, err = c.text(ctx, "improvement_problem", prompts.FollowUpProblem(r.Summary)); err != nil {
		return nil, err
	}
	if r.StudentAttempt, err = c.text(ctx, "improvement_attempt", prompts.FollowUpAttempt(r.Summary, r.GeneratedProblem)); err != nil {
		return nil, err
	}
	if r.ImprovementAnalysis, err = c.text(ctx, "improvement_analysis", prompts.Improvement(r.Summary, r.StudentAttempt)); err != nil {
		return nil, err
	}

	practice, err := c.text(ctx, "improvement_practice", prompts.Practice(r.ImprovementAnalysis))
	if err != nil {
		return nil, err
	}
	r.PracticeProblems = Lines(practice)

	c.logger.Info().Int("practice_problems", len(r.PracticeProblems)).Msg("improvement analysis finished")
	return r, nil
}

func (c *Chain) text(ctx context.Context, purpose, prompt string) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)
	res, err := c.invoker.InvokeText(ctx, prompt, c.config.Model, c.config.Temperature)
	if err != nil {
		return "", fmt.Errorf("%s: %w", purpose, err)
	}
	s, _ := res.Value.(string)
	c.logger.Debug().Str("step", purpose).Bool("cached", res.Cached).Msg("improvement step finished")
	return s, nil
}

// Lines splits text into its non-empty trimmed lines.
func Lines(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
