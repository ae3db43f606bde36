package pipeline

import (
	"strings"

	"github.com/LakGar/Lumina-sub000/core"
)

// DefaultChunkSize is the default chunk bound in characters, sized for
// roughly 400 embedding tokens at ~4 characters per token.
const DefaultChunkSize = 1600

// ChunkText splits text into bounded chunks for embedding. The split is
// deterministic: the same text always yields the same chunks, so
// re-processing an entry reproduces identical vector record IDs.
//
// Text at or under maxChars becomes a single chunk, unchanged. Longer text
// is split on sentence boundaries and sentences are accumulated greedily,
// flushing a chunk before it would exceed the bound. A single sentence
// longer than the bound is kept whole as its own chunk rather than cut
// mid-sentence. Nothing is dropped. Chunk indices start at 0.
//
// maxChars <= 0 uses DefaultChunkSize. Whitespace-only text yields no
// chunks.
func ChunkText(text string, maxChars int) []core.TextChunk {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if len(trimmed) <= maxChars {
		return []core.TextChunk{{Index: 0, Text: trimmed}}
	}

	sentences := splitSentences(trimmed)

	var (
		chunks  []core.TextChunk
		current strings.Builder
	)
	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, core.TextChunk{Index: len(chunks), Text: current.String()})
		current.Reset()
	}

	for _, sentence := range sentences {
		needed := len(sentence)
		if current.Len() > 0 {
			needed += current.Len() + 1 // joining space
		}
		if needed > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences breaks text into sentences on '.', '!' and '?'
// terminators, keeping each terminator run with its sentence. Text with no
// terminator comes back as one sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		// Consume a run of terminators ("?!", "...") as one boundary.
		end := i + 1
		for end < len(text) && isTerminator(text[end]) {
			end++
		}
		sentence := strings.TrimSpace(text[start:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
		i = end - 1
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}
