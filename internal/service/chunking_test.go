package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWords_EmptyInput(t *testing.T) {
	assert.Nil(t, ChunkWords("", 800))
	assert.Nil(t, ChunkWords("   \n\t  ", 800))
}

func TestChunkWords_SingleChunk(t *testing.T) {
	chunks := ChunkWords("alpha beta gamma", 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma", chunks[0])
}

func TestChunkWords_ExactBoundary(t *testing.T) {
	chunks := ChunkWords("a b c d", 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, "a b", chunks[0])
	assert.Equal(t, "c d", chunks[1])
}

func TestChunkWords_ShortLastChunk(t *testing.T) {
	chunks := ChunkWords("a b c d e", 2)

	require.Len(t, chunks, 3)
	assert.Equal(t, "a b", chunks[0])
	assert.Equal(t, "c d", chunks[1])
	assert.Equal(t, "e", chunks[2])
}

func TestChunkWords_NormalizesWhitespace(t *testing.T) {
	chunks := ChunkWords("  alpha \n beta\t\tgamma  ", 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha beta", chunks[0])
	assert.Equal(t, "gamma", chunks[1])
}

func TestChunkWords_NonPositiveMaxWordsUsesDefault(t *testing.T) {
	words := make([]string, DefaultMaxWords+1)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}

	chunks := ChunkWords(strings.Join(words, " "), 0)
	assert.Len(t, chunks, 2)
}

// Every fragment respects the word budget, and joining the fragments'
// words in order reproduces the original token sequence.
func TestChunkWords_PreservesTokenSequence(t *testing.T) {
	inputs := []string{
		"one",
		"one two three four five six seven",
		strings.Repeat("token ", 1600),
	}

	for _, input := range inputs {
		for _, maxWords := range []int{1, 3, 800} {
			chunks := ChunkWords(input, maxWords)

			var rejoined []string
			for _, chunk := range chunks {
				words := strings.Fields(chunk)
				assert.LessOrEqual(t, len(words), maxWords)
				rejoined = append(rejoined, words...)
			}

			assert.Equal(t, strings.Fields(input), rejoined)
		}
	}
}

func TestChunkWords_Deterministic(t *testing.T) {
	input := strings.Repeat("meeting notes with decisions ", 400)

	first := ChunkWords(input, 800)
	second := ChunkWords(input, 800)

	assert.Equal(t, first, second)
}

func TestChunkWords_SixteenHundredWordsAtEightHundred(t *testing.T) {
	input := strings.TrimSpace(strings.Repeat("word ", 1600))

	chunks := ChunkWords(input, 800)

	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[0]), 800)
	assert.Len(t, strings.Fields(chunks[1]), 800)
}
