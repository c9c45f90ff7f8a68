package classifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// MaxChunkSize is the number of characters of a transcript sent for classification.
const MaxChunkSize = 30000

const classifyInstruction = `Classify the meeting transcript into exactly one of these categories:
%s
Answer with a JSON object {"category": "<category name>", "confidence": <number between 0 and 1>}.
The category must be copied exactly from the list above. Use "Other" when no category fits.
`

const summaryInstruction = `Summarize this meeting for a team chat message. The output must be ready to post. Focus on:
- Key decisions
- Action items, per person when the transcript names them
- Main discussion points
- Plans for the day or week, if any

Split it into "Updates" and "Action Points" sections. Use '-' bullet points and *bold* section headers. Keep it concise without leaving out key information.
`

const validationInstruction = `Write a user validation summary of this meeting for a team chat message. The output must be ready to post. Focus on:
- User feedback and pain points
- Features discussed, both existing and upcoming
- User behavior and usage patterns
- Assumptions that were validated or rejected
- Key insights
- Next steps and follow-up actions

Start each section with an emoji and a *bold* header. Use '-' bullet points, quote users where the transcript allows, and end with a "Next Steps" section of actionable items.
`

const documentInstruction = `Provide a concise summary of this meeting transcript focusing on:
- Key discussion points
- Important decisions made
- Action items or next steps
- Project updates

Use plain text with '-' bullet points.
`

// ClassificationPrompt builds the classification prompt for doc.
func ClassificationPrompt(set meeting.CategorySet, doc meeting.Document) string {
	var list strings.Builder
	for _, c := range set.Categories() {
		if hint := set.Hint(c); hint != "" {
			fmt.Fprintf(&list, "- %s (%s)\n", c, hint)
			continue
		}
		fmt.Fprintf(&list, "- %s\n", c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, classifyInstruction, list.String())
	if doc.Name != "" {
		fmt.Fprintf(&b, "\nDocument name: %s\n", doc.Name)
	}
	fmt.Fprintf(&b, "\nTranscript excerpt:\n%s", FirstChunk(doc.Text))
	return b.String()
}

// SummaryPrompt builds the summary prompt of the given kind for doc.
// Unknown kinds use the chat prompt.
func SummaryPrompt(kind SummaryKind, doc meeting.Document) string {
	var b strings.Builder
	switch kind {
	case ValidationSummary:
		b.WriteString(validationInstruction)
	case DocumentSummary:
		b.WriteString(documentInstruction)
	default:
		b.WriteString(summaryInstruction)
	}
	if !doc.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "\nMeeting time: %s\n", doc.CreatedAt.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&b, "\nTranscript:\n%s", FirstChunk(doc.Text))
	return b.String()
}

// FirstChunk returns the leading part of text that fits in MaxChunkSize
// characters, split on line boundaries. A single oversized line is cut.
func FirstChunk(text string) string {
	if utf8.RuneCountInString(text) <= MaxChunkSize {
		return text
	}

	var lines []string
	size := 0
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line) + 1
		if size+n > MaxChunkSize {
			if len(lines) == 0 {
				return string([]rune(line)[:MaxChunkSize])
			}
			break
		}
		lines = append(lines, line)
		size += n
	}
	return strings.Join(lines, "\n")
}
