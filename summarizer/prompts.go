package summarizer

const (
	singlePromptPrefix = "Summarize the following journal entries for the user. " +
		"Write them in second person. Do not include any other information. " +
		"Also provide ways by which the user could ensure their mental well-being. " +
		"Here are the entries:\n\n"

	firstChunkPromptPrefix = "Summarize the following journal entries for the user. "

	continuationChunkPromptPrefix = "This is a continuation of journal entries from the same user. Continue the summary. "

	chunkPromptBody = "Write in second person. Here are the entries:\n\n"

	mergePromptPrefix = "Combine these partial summaries into one cohesive summary. " +
		"Write in second person and provide ways the user could ensure their mental well-being:\n\n"
)

// SinglePrompt 는 한도 이내의 전체 항목을 한 번에 요약하는 프롬프트다.
func SinglePrompt(combined string) string {
	return singlePromptPrefix + combined
}

// ChunkPrompt 는 index 번째(0부터) 조각을 요약하는 프롬프트다.
// 첫 조각 이후는 이어지는 내용임을 명시한다.
func ChunkPrompt(index int, chunk string) string {
	prefix := firstChunkPromptPrefix
	if index > 0 {
		prefix = continuationChunkPromptPrefix
	}
	return prefix + chunkPromptBody + chunk
}

// MergePrompt 는 조각별 요약을 하나로 합치는 프롬프트다.
func MergePrompt(joinedSummaries string) string {
	return mergePromptPrefix + joinedSummaries
}
