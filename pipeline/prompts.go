package pipeline

import (
	"fmt"
	"strings"
)

// Prompt templates for the enrichment sub-tasks. Each template demands a
// bare answer with no preamble so the responses can be used verbatim.

const summaryPromptTemplate = `Summarize the following journal entry in 2-3 sentences.

Rules:
- Write an abstractive summary in plain prose, third person omitted ("Spent the morning...", not "The author spent...").
- Do not include any preamble, labels, quotes, or commentary. Output only the summary sentences.
- Do not invent events that are not in the entry.

Journal entry:
%s`

const tagsPromptTemplate = `Generate 3-5 short topical tags for the following journal entry.

Rules:
- Output ONLY the tags, comma-separated, on a single line. Example: work, stress, family dinner
- Each tag is 1-3 lowercase words. No hashtags, no numbering, no explanation.

Journal entry:
%s`

const moodPromptTemplate = `Classify the overall mood of the following journal entry.

Answer with exactly one word from this list and nothing else: %s.

Journal entry:
%s`

// summaryPrompt builds the summary-generation prompt for an entry.
func summaryPrompt(text string) string {
	return fmt.Sprintf(summaryPromptTemplate, text)
}

// tagsPrompt builds the tag-generation prompt for an entry.
func tagsPrompt(text string) string {
	return fmt.Sprintf(tagsPromptTemplate, text)
}

// moodPrompt builds the mood-classification prompt for an entry.
// moods is the closed label set the model must choose from.
func moodPrompt(text string, moods []string) string {
	return fmt.Sprintf(moodPromptTemplate, strings.Join(moods, ", "), text)
}
