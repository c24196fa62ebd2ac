package consistency

// NoDisability is the catalog entry for a student without a learning
// disability. Unknown disability names fall back to its behavior set.
const NoDisability = "No disability"

type behaviorSet struct {
	expected   []string
	unexpected []string
}

// behaviorCatalog lists phrases that a realistic simulation of each
// disability tends to contain, and phrases that contradict it.
var behaviorCatalog = map[string]behaviorSet{
	"Dyslexia": {
		expected:   []string{"confusion", "re-reading", "number reversal", "mixing up", "difficulty reading", "reversed", "transposed", "b/d", "p/q", "6/9"},
		unexpected: []string{"clear understanding", "no confusion", "perfect reading", "easily understood"},
	},
	"Dyscalculia": {
		expected:   []string{"number confusion", "operation confusion", "calculation errors", "number sense issues", "confused", "mistake", "wrong operation"},
		unexpected: []string{"perfect calculations", "no number confusion", "clear calculations"},
	},
	"Attention Deficit Hyperactivity Disorder": {
		expected:   []string{"rushing", "skipping steps", "careless errors", "impulsive", "losing focus", "quickly", "fast", "skip"},
		unexpected: []string{"careful work", "no rushing", "complete steps", "thoroughly"},
	},
	"Dysgraphia": {
		expected:   []string{"handwriting", "writing", "difficulty writing", "messy", "unclear", "backwards"},
		unexpected: []string{"clear writing", "neat", "perfect handwriting"},
	},
	"Auditory Processing Disorder": {
		expected:   []string{"misunderstood", "confused instructions", "hearing", "listening", "misheard"},
		unexpected: []string{"clear understanding", "perfect hearing"},
	},
	"Non verbal Learning Disorder": {
		expected:   []string{"visual", "spatial", "diagram", "chart", "graph", "confused"},
		unexpected: []string{"clear visual understanding", "perfect spatial"},
	},
	"Language Processing Disorder": {
		expected:   []string{"language", "words", "vocabulary", "confused", "misunderstood"},
		unexpected: []string{"clear language", "perfect understanding"},
	},
	NoDisability: {
		expected:   []string{"clear thinking", "logical steps", "careful work", "methodical", "systematic"},
		unexpected: []string{"excessive confusion", "major errors", "disability-like patterns", "very confused", "completely wrong"},
	},
}

// errorCatalog lists the error signatures characteristic of a disability.
// Disabilities without an entry score neutrally.
var errorCatalog = map[string][]string{
	"Dyslexia":    {"6/9", "b/d", "p/q", "reversed", "transposed"},
	"Dyscalculia": {"operation confusion", "number confusion", "place value"},
	"Attention Deficit Hyperactivity Disorder": {"rushed", "skipped", "careless"},
	NoDisability: {},
}

// genericErrorIndicators mark error-laden work, which is unexpected
// without a disability.
var genericErrorIndicators = []string{"confusion", "mistake", "error", "wrong", "difficult"}

// operationMarkers signal that a step performs arithmetic.
var operationMarkers = []string{"+", "-", "×", "*", "÷", "/", "=", "equals"}

// requiredFields must all be present for an attempt to be complete.
var requiredFields = []string{"thoughtprocess", "steps_to_solve", "disability_impact"}

// Advisory strings, one per check.
const (
	recStepAnswer   = "Ensure the final answer matches the step-by-step calculations"
	recBehavior     = "Review disability characteristics to make the simulation more realistic"
	recReasoning    = "Include more detailed mathematical work and logical progression"
	recErrorPattern = "Add more disability-specific error patterns to the response"
	recCompleteness = "Ensure all required fields are present and meaningful"

	flagStepAnswer   = "CRITICAL: Final answer doesn't match step-by-step work"
	flagBehavior     = "CRITICAL: Response doesn't match expected disability behavior"
	flagCompleteness = "CRITICAL: Response is severely incomplete"
)
