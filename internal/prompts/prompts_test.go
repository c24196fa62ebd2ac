package prompts

import (
	"strings"
	"testing"
)

func TestProblemMentionsGradeAndDifficulty(t *testing.T) {
	p := Problem("5th", "hard")

	if !strings.Contains(p, "suitable for a 5th grade student with hard difficulty") {
		t.Error("missing grade/difficulty line")
	}
	if !strings.Contains(p, `"grade_level": "5th"`) {
		t.Error("missing grade in output template")
	}
	if !strings.Contains(p, `"difficulty": "hard"`) {
		t.Error("missing difficulty in output template")
	}
}

func TestAttemptDefaults(t *testing.T) {
	system, user := Attempt(AttemptInput{Disability: "Dyscalculia", Problem: "3 boxes of 4 pencils"})

	if !strings.Contains(system, "student with Dyscalculia") {
		t.Error("system prompt should name the disability")
	}
	for _, want := range []string{
		"Problem: 3 boxes of 4 pencils",
		"Target correctness: likely_incorrect",
		"Expected correct answer (if known): [not provided]",
		"Preferred error pattern: operation_confusion",
		"Trouble with basic arithmetic operations",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestAttemptUsesGivenValues(t *testing.T) {
	_, user := Attempt(AttemptInput{
		Disability:        "Dyslexia",
		Problem:           "p",
		TargetCorrectness: "likely_correct",
		ExpectedAnswer:    " 12 ",
		ErrorStyle:        "digit_reversal",
	})

	for _, want := range []string{
		"Target correctness: likely_correct",
		"Expected correct answer (if known): 12\n",
		"Preferred error pattern: digit_reversal",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestAttemptUnknownDisabilityUsesDyslexiaProfile(t *testing.T) {
	_, user := Attempt(AttemptInput{Disability: "Something", Problem: "p"})
	if !strings.Contains(user, profiles["Dyslexia"].Description) {
		t.Error("expected Dyslexia profile for unknown disability")
	}
}

func TestDefaultErrorStyle(t *testing.T) {
	tests := map[string]string{
		"Dyslexia":                                 "digit_reversal",
		"Dyscalculia":                              "operation_confusion",
		"Attention Deficit Hyperactivity Disorder": "skipped_step",
		"Dysgraphia":                               "miscopy_digit",
		"Auditory Processing Disorder":             "misheard_number",
		"Non verbal Learning Disorder":             "visual_misread",
		"Language Processing Disorder":             "language_misinterpretation",
		"No disability":                            FallbackErrorStyle,
	}
	for disability, want := range tests {
		if got := DefaultErrorStyle(disability); got != want {
			t.Errorf("DefaultErrorStyle(%q) = %q, want %q", disability, got, want)
		}
	}
}

func TestEveryDisabilityHasAProfile(t *testing.T) {
	for _, d := range Disabilities() {
		if _, ok := ProfileFor(d); !ok {
			t.Errorf("no profile for %q", d)
		}
	}
}

func TestCollisionNote(t *testing.T) {
	got := CollisionNote("12")
	want := "NEVER output this exact final answer: 12. Choose a different plausible wrong answer."
	if got != want {
		t.Errorf("CollisionNote = %q", got)
	}
}

func TestTutorKeepsContext(t *testing.T) {
	p := Tutor("ADHD", "p", "{}", "{}")
	if !strings.Contains(p, "USE THE SAME REAL-WORLD CONTEXT") {
		t.Error("tutor prompt should pin the follow-up question to the same context")
	}
	if !strings.Contains(p, "at most 20%") {
		t.Error("tutor prompt should bound numeric drift")
	}
}

func TestIdentifyListsEveryProfile(t *testing.T) {
	p := Identify("3 + 4", "I got 34")
	for _, d := range Disabilities() {
		if !strings.Contains(p, d) {
			t.Errorf("identify prompt missing %q", d)
		}
	}
	if !strings.Contains(p, "Student Response: I got 34") {
		t.Error("missing student response")
	}
}

func TestImprovementPromptsEmbedInputs(t *testing.T) {
	if !strings.Contains(Summary("log A"), "log A") {
		t.Error("summary prompt missing logs")
	}
	if !strings.Contains(FollowUpAttempt("sum", "prob"), "sum\n\nProblem:\nprob") {
		t.Error("attempt prompt missing inputs")
	}
	if !strings.Contains(Practice("better at carrying"), "better at carrying") {
		t.Error("practice prompt missing improvement")
	}
}
