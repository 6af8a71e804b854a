package backend

import "github.com/concave-dev/lumen/internal/batching"

// StyledPrompt folds the optional style into the text the model sees.
func StyledPrompt(p batching.Prompt) string {
	if p.Style == "" {
		return p.Text
	}
	return p.Text + " in the style of " + p.Style
}

// StyledPrompts applies StyledPrompt to every prompt, preserving order.
func StyledPrompts(prompts []batching.Prompt) []string {
	out := make([]string, len(prompts))
	for i, p := range prompts {
		out[i] = StyledPrompt(p)
	}
	return out
}
