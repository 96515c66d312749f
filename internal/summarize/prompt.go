package summarize

import "fmt"

// SummaryPrompt is the single user message sent for the summary.
func SummaryPrompt(title, transcript string) string {
	return fmt.Sprintf(`Analyze this lecture transcript and create a detailed summary.

Lecture Title: %s

Transcript:
%s

Provide a comprehensive summary covering:
1. Main topics and concepts
2. Key takeaways
3. Important definitions or formulas
4. Practical applications

Summary:`, title, transcript)
}

// CodePrompt asks the model to list code it can find in a transcript.
func CodePrompt(transcript string) string {
	return fmt.Sprintf(`Extract all code snippets from this transcript. Return only the code, one per line:

%s

Code snippets:`, transcript)
}

// MockSummary stands in for a model when none is configured.
func MockSummary(title string) string {
	return fmt.Sprintf("**[Mock Summary for %s]**\n\nNo AI provider configured. Set LLM_MODEL (and LLM_BASE_URL / LLM_API_KEY) to enable summaries.", title)
}
