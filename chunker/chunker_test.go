package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkReturnsInputUnderLimit(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "short", text: "오늘은 산책을 했다.\n기분이 좋았다."},
		{name: "exactly at limit", text: strings.Repeat("x", 100)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			chunks := Chunk(testCase.text, 100)
			assert.Equal(t, []string{testCase.text}, chunks)
		})
	}
}

func TestChunkSeparatesParagraphsThatDoNotFit(t *testing.T) {
	a := strings.Repeat("a", 10)
	b := strings.Repeat("b", 20)

	chunks := Chunk(a+"\n"+b, 15)

	assert.Equal(t, []string{a + "\n", b + "\n"}, chunks)
}

func TestChunkPacksParagraphsGreedily(t *testing.T) {
	text := "aaaa\nbbbb\ncccc\ndddd"

	chunks := Chunk(text, 10)

	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\ndddd\n"}, chunks)
}

func TestChunkKeepsOversizedParagraphWhole(t *testing.T) {
	long := strings.Repeat("z", 50)
	text := "short\n" + long + "\ntail"

	chunks := Chunk(text, 20)

	require.Len(t, chunks, 3)
	assert.Equal(t, "short\n", chunks[0])
	assert.Equal(t, long+"\n", chunks[1])
	assert.Equal(t, "tail\n", chunks[2])
}

func TestChunkSingleOversizedParagraphYieldsOneChunk(t *testing.T) {
	long := strings.Repeat("q", 45000)

	chunks := Chunk(long, DefaultMaxChunkSize)

	assert.Equal(t, []string{long + "\n"}, chunks)
}

func TestChunkRejoinPreservesParagraphOrder(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 40; i++ {
		paragraphs = append(paragraphs, strings.Repeat(string(rune('a'+i%26)), 7+i%13))
	}
	text := strings.Join(paragraphs, "\n")

	chunks := Chunk(text, 50)
	require.Greater(t, len(chunks), 1)

	rejoined := strings.Join(chunks, "")
	assert.Equal(t, text+"\n", rejoined)
	for _, c := range chunks {
		if strings.Count(c, "\n") > 1 {
			assert.LessOrEqual(t, len([]rune(c)), 50)
		}
	}
}

func TestChunkCountsCharactersNotBytes(t *testing.T) {
	// 한글 한 글자는 3바이트지만 한 문자로 센다.
	text := strings.Repeat("가", 10) + "\n" + strings.Repeat("나", 10)

	chunks := Chunk(text, 25)

	assert.Equal(t, []string{text}, chunks)
}
