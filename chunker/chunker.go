// Package chunker 는 LLM 입력 한도를 넘는 텍스트를 문단 경계로 나눈다.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize 는 한 번의 요약 요청에 넣을 수 있는 최대 문자 수다.
const DefaultMaxChunkSize = 30000

// Chunk 는 text 를 maxChunkSize 문자 이하의 조각으로 나눈다.
//
// text 가 한도 이내면 입력을 그대로 담은 단일 조각을 반환한다.
// 그렇지 않으면 줄바꿈 기준으로 문단을 나눈 뒤, 각 문단 뒤에 줄바꿈을 붙여 순서대로 채워 넣는다.
// 한도보다 긴 단일 문단은 쪼개지 않고 그 자체로 하나의 조각이 된다.
func Chunk(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if utf8.RuneCountInString(text) <= maxChunkSize {
		return []string{text}
	}

	var (
		chunks     []string
		current    strings.Builder
		currentLen int
	)

	for _, paragraph := range strings.Split(text, "\n") {
		paragraphLen := utf8.RuneCountInString(paragraph)
		if currentLen+paragraphLen+1 > maxChunkSize && currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(paragraph)
		current.WriteByte('\n')
		currentLen += paragraphLen + 1
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
