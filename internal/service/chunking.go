package service

import "strings"

// DefaultMaxWords is the chunk size used when the caller does not
// configure one. Matches the deployed ingestion behavior; changing it
// changes chunk boundaries for all future ingests.
const DefaultMaxWords = 800

// ChunkWords splits text on whitespace into word tokens and groups
// consecutive tokens into fragments of at most maxWords each, rejoined
// with single spaces. The last fragment may be shorter. Blank input
// yields no fragments.
//
// Boundaries are a pure function of token order and maxWords: no
// overlap, no sentence awareness, no randomness. Downstream chunk
// indexes depend on this being deterministic.
func ChunkWords(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
