package summarizer

import (
	"context"
	"slices"

	"journal-summary/config"
)

// UserSummarizer 는 한 사용자의 항목을 요약한다. (Engine)
type UserSummarizer interface {
	SummarizeUser(ctx context.Context, entries []string) (string, error)
}

// Coordinator 는 배치의 사용자들을 순차적으로 요약한다.
// 외부 서비스 한도를 지키기 위해 사용자 단위 병렬 처리는 하지 않는다.
type Coordinator struct {
	summarizer UserSummarizer
}

func NewCoordinator(summarizer UserSummarizer) *Coordinator {
	return &Coordinator{summarizer: summarizer}
}

// SummarizeBatch 는 사용자 ID 오름차순으로 요약을 수행한다.
// 한 사용자의 실패는 ErrorSentinel 로 대체되고 나머지 사용자는 계속 처리된다.
func (c *Coordinator) SummarizeBatch(ctx context.Context, batch Batch) Result {
	requestID := CallInfoFromContext(ctx).RequestID
	config.InfoWithFields("processing summary batch", config.Fields{
		"request_id": requestID,
		"users":      len(batch),
	})

	userIDs := make([]int64, 0, len(batch))
	for userID := range batch {
		userIDs = append(userIDs, userID)
	}
	slices.Sort(userIDs)

	result := make(Result, len(batch))
	for _, userID := range userIDs {
		entries := batch[userID]
		config.Logger.Infof("processing user %d with %d entries", userID, len(entries))

		userCtx := WithCallInfo(ctx, CallInfo{UserID: userID})
		summary, err := c.summarizer.SummarizeUser(userCtx, entries)
		if err != nil {
			config.ErrorWithFields("failed to generate summary", config.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			})
			result[userID] = ErrorSentinel
			continue
		}

		config.Logger.Infof("successfully generated summary for user %d", userID)
		result[userID] = summary
	}

	config.InfoWithFields("completed summary batch", config.Fields{
		"request_id": requestID,
		"users":      len(result),
	})
	return result
}
