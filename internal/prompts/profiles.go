package prompts

import "strings"

// Profile describes how a learning disability tends to show up in math
// work. It is pasted into the simulation prompts.
type Profile struct {
	Description     string
	Characteristics []string
	MathImpact      string
	// ErrorStyle is the default error tag used to shape a simulated
	// wrong answer.
	ErrorStyle string
}

// FallbackErrorStyle is used for disabilities without a profile.
const FallbackErrorStyle = "operation_confusion"

var profiles = map[string]Profile{
	"Dyslexia": {
		Description: "A learning disability that affects reading, writing, and language processing",
		Characteristics: []string{
			"Difficulty with letter and number recognition",
			"Tendency to reverse or transpose letters/numbers (b/d, p/q, 6/9)",
			"Slow reading speed and frequent re-reading",
			"Difficulty with word problems due to reading challenges",
			"May skip words or lines while reading",
		},
		MathImpact: "May misread numbers, confuse operation symbols, or struggle with word problems",
		ErrorStyle: "digit_reversal",
	},
	"Dysgraphia": {
		Description: "A learning disability that affects writing and fine motor skills",
		Characteristics: []string{
			"Poor handwriting and difficulty with letter formation",
			"Trouble with spacing and alignment",
			"Difficulty copying from board or book",
			"May write numbers backwards or in wrong order",
			"Slow writing speed affects problem-solving flow",
		},
		MathImpact: "May miscopy numbers, lose track of steps, or have messy work that leads to errors",
		ErrorStyle: "miscopy_digit",
	},
	"Dyscalculia": {
		Description: "A learning disability that affects number sense and mathematical reasoning",
		Characteristics: []string{
			"Difficulty understanding number concepts and relationships",
			"Trouble with basic arithmetic operations",
			"Confusion with mathematical symbols and operations",
			"Difficulty with number sequencing and place value",
			"Problems with estimation and mental math",
		},
		MathImpact: "May confuse operations, misunderstand fractions, or struggle with number sense",
		ErrorStyle: "operation_confusion",
	},
	"Attention Deficit Hyperactivity Disorder": {
		Description: "A neurodevelopmental disorder affecting attention, impulse control, and hyperactivity",
		Characteristics: []string{
			"Difficulty sustaining attention on tasks",
			"Impulsive decision-making and rushing through problems",
			"Tendency to skip steps or make careless errors",
			"Difficulty with multi-step problems",
			"May lose track of the problem's goal",
		},
		MathImpact: "May rush through problems, skip steps, or lose focus mid-calculation",
		ErrorStyle: "skipped_step",
	},
	"Auditory Processing Disorder": {
		Description: "A hearing disorder that affects how the brain processes auditory information",
		Characteristics: []string{
			"Difficulty understanding spoken instructions",
			"Trouble distinguishing between similar sounds",
			"May need instructions repeated multiple times",
			"Difficulty following multi-step verbal directions",
			"Sensitivity to background noise",
		},
		MathImpact: "May misinterpret verbal instructions or confuse similar-sounding numbers",
		ErrorStyle: "misheard_number",
	},
	"Non verbal Learning Disorder": {
		Description: "A learning disability that affects visual-spatial processing and social skills",
		Characteristics: []string{
			"Difficulty with visual-spatial relationships",
			"Trouble understanding charts, graphs, and diagrams",
			"Poor sense of direction and spatial orientation",
			"Difficulty with geometry and spatial reasoning",
			"May struggle with visual organization",
		},
		MathImpact: "May misjudge quantities, struggle with geometry, or have trouble with visual representations",
		ErrorStyle: "visual_misread",
	},
	"Language Processing Disorder": {
		Description: "A learning disability that affects understanding and use of language",
		Characteristics: []string{
			"Difficulty understanding complex language structures",
			"Trouble with vocabulary and word meanings",
			"Difficulty following multi-step instructions",
			"May misunderstand question intent or context",
			"Problems with abstract language concepts",
		},
		MathImpact: "May misunderstand word problem language, confuse mathematical terms, or misinterpret questions",
		ErrorStyle: "language_misinterpretation",
	},
}

// ProfileFor returns the profile for disability. Unknown disabilities
// get the Dyslexia description and ok=false.
func ProfileFor(disability string) (p Profile, ok bool) {
	p, ok = profiles[disability]
	if !ok {
		p = profiles["Dyslexia"]
	}
	return p, ok
}

// DefaultErrorStyle returns the error tag used for disability when the
// caller does not pick one.
func DefaultErrorStyle(disability string) string {
	if p, ok := profiles[disability]; ok {
		return p.ErrorStyle
	}
	return FallbackErrorStyle
}

// Disabilities lists the profiled disabilities in a stable order.
func Disabilities() []string {
	return []string{
		"Dyslexia",
		"Dyscalculia",
		"Attention Deficit Hyperactivity Disorder",
		"Dysgraphia",
		"Auditory Processing Disorder",
		"Non verbal Learning Disorder",
		"Language Processing Disorder",
	}
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
