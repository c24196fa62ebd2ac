package prompts

import "fmt"

// Prompts for the improvement chain. Each step feeds on the text the
// previous one produced.

func Summary(pastAttempts string) string {
	return fmt.Sprintf(`You are an educational psychologist.
Given the student's past performance and responses below, summarize the key struggles, misconceptions, and strengths in 4-5 sentences.

Past Attempts / Logs:
%s`, pastAttempts)
}

func FollowUpProblem(summary string) string {
	return fmt.Sprintf(`The student previously struggled with:
%s

Generate one math problem of the SAME type and difficulty to test if the student has improved.
Output only the problem, as JSON: {"problem": ""}`, summary)
}

func FollowUpAttempt(summary, problem string) string {
	return fmt.Sprintf(`Simulate how this same student would attempt the new problem, showing what they think while solving it based on their earlier learning.
Include reasoning steps and a final answer.

Student Profile Summary:
%s

Problem:
%s

Output strictly in this JSON format (no code block):
{"thoughts": "<student's reasoning>", "steps": ["step1", "step2"], "final_answer": "<answer>"}`, summary, problem)
}

func Improvement(summary, attempt string) string {
	return fmt.Sprintf(`Compare the student's previous weaknesses and their latest attempt.

Weaknesses Summary:
%s

Latest Attempt:
%s

Write a concise analysis (4-6 sentences) highlighting:
- Conceptual improvements
- Remaining issues
- Emotional or behavioral changes if any`, summary, attempt)
}

func Practice(improvement string) string {
	return fmt.Sprintf(`The student showed the following improvement:
%s

Generate 3 practice problems of similar type and difficulty to reinforce learning. Format as a numbered list.`, improvement)
}
