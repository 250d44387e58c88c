package diagnosis

import (
	"context"
	"strings"
)

// SystemInstruction is the fixed role prompt sent with every diagnosis.
const SystemInstruction = "You are a debugging assistant and your job is to find anything that may have gone wrong."

// SuggestionPrompt asks the model for the hypotheses themselves.
const SuggestionPrompt = "Provide 3 suggestions of what you think went wrong. " +
	"There may not be 3, if there aren't just give as many as you can think of. " +
	"The bug will be very obvious and you will see it"

// Result is an ordered list of up to three suggestion strings. The model
// may return fewer than three usable suggestions; callers must not assume
// exactly three.
type Result struct {
	Choices []string
}

// Choice returns the i-th suggestion or an empty string, so response
// shaping never has to care how many suggestions came back.
func (r Result) Choice(i int) string {
	if i < 0 || i >= len(r.Choices) {
		return ""
	}
	return r.Choices[i]
}

// Client consults a generative model about a rendered session. video holds
// the mp4 bytes; narrative is the textual description of the same session
// and may stand in for the video on text-only models.
type Client interface {
	Diagnose(ctx context.Context, video []byte, narrative string) (Result, error)
}

// splitSuggestions extracts up to three suggestions from freeform model
// output: one per non-empty line, common list markers stripped. When no
// line structure is found the whole text is a single suggestion.
func splitSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		for _, prefix := range []string{"1.", "2.", "3."} {
			line = strings.TrimPrefix(line, prefix)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == 3 {
			break
		}
	}
	if len(out) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
