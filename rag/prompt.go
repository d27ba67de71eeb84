package rag

import (
	"fmt"
	"strings"

	"github.com/becomeliminal/memory-vault/core"
)

// PersonaPrompt is the system prompt for generators that accept one.
const PersonaPrompt = `You are the Living Memory Vault, an AI archivist who answers based only on the user's memories.
Be warm, nostalgic and factual. Cite the filename or year when referencing memories.
If something is imagined, clearly mark it as imagined.`

// FallbackResponse is returned when nothing has been stored yet.
const FallbackResponse = "I don't have any memories to reference yet. Please upload some files first!"

const (
	imageIntentContext = "The user is asking about images/photos in their memories."
	audioIntentContext = "The user is asking about audio recordings in their memories."
	answerLabel        = "Answer:"
)

var (
	imageKeywords = []string{"photo", "image", "picture", "show", "display"}
	audioKeywords = []string{"audio", "sound", "recording", "play", "listen", "music", "voice"}
)

// mentionsAny reports whether the lowercased query contains any keyword as a substring.
func mentionsAny(query string, keywords []string) bool {
	q := strings.ToLower(query)
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// buildContext renders non-media memories, unless the query asks about media that was retrieved.
// The image check wins over the audio check.
func buildContext(query string, images, audio, other []core.Result) string {
	switch {
	case len(images) > 0 && mentionsAny(query, imageKeywords):
		return imageIntentContext
	case len(audio) > 0 && mentionsAny(query, audioKeywords):
		return audioIntentContext
	}

	lines := make([]string, 0, len(other))
	for _, r := range other {
		lines = append(lines, fmt.Sprintf("Memory from %s (%s): %s", r.Record.Filename, r.Record.SourceType, r.Content))
	}
	return strings.Join(lines, "\n")
}

func buildPrompt(query, context string) string {
	return fmt.Sprintf("Question: %s\nContext: %s\nAnswer:", query, context)
}

// cleanCompletion drops an echoed answer label.
func cleanCompletion(text string) string {
	text = strings.TrimPrefix(text, answerLabel)
	return strings.TrimSpace(text)
}

func personaResponse(text string) string {
	return fmt.Sprintf("As your memory archivist, I recall: %s", text)
}
