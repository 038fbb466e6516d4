package summarizer

import (
	"context"
	"errors"

	"journal-summary/models"
)

// ErrorSentinel 은 한 사용자의 요약이 재시도를 모두 소진하고도 실패했을 때 결과에 들어가는 값이다.
const ErrorSentinel = "Unable to generate summary due to an error."

var (
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrMissingAPIKey = errors.New("gemini api key not found")
)

// Batch 는 사용자 ID 별 일기 항목 목록이다. 항목 순서가 곧 이어붙이는 순서다.
type Batch map[int64][]string

// Result 는 사용자 ID 별 요약 또는 ErrorSentinel 이다.
type Result map[int64]string

// Generator 는 외부 텍스트 생성 서비스에 대한 최소 계약이다.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Admitter 는 외부 호출 직전에 통과해야 하는 승인 제어기다. (ratelimit.TokenBucket)
type Admitter interface {
	Wait(ctx context.Context, n int) error
}

// UsageRecorder 는 LLM 호출 사용량 메타데이터를 기록한다. (repositories.AILogRepository)
type UsageRecorder interface {
	RecordUsage(ctx context.Context, log models.AILog) error
}

// 호출 단계 이름. 사용량 로그와 진행 로그에 남는다.
const (
	StageSingle = "single"
	StageChunk  = "chunk"
	StageMerge  = "merge"
)

type callInfoKey struct{}

// CallInfo 는 하나의 외부 호출이 어느 요청/사용자/단계에 속하는지 나타낸다.
type CallInfo struct {
	RequestID string
	UserID    int64
	Stage     string
}

// WithCallInfo 는 ctx 에 기존 CallInfo 를 덮어쓴 새 컨텍스트를 반환한다.
// 빈 필드는 기존 값을 유지한다.
func WithCallInfo(ctx context.Context, info CallInfo) context.Context {
	prev := CallInfoFromContext(ctx)
	if info.RequestID == "" {
		info.RequestID = prev.RequestID
	}
	if info.UserID == 0 {
		info.UserID = prev.UserID
	}
	if info.Stage == "" {
		info.Stage = prev.Stage
	}
	return context.WithValue(ctx, callInfoKey{}, info)
}

func CallInfoFromContext(ctx context.Context) CallInfo {
	if ctx == nil {
		return CallInfo{}
	}
	info, _ := ctx.Value(callInfoKey{}).(CallInfo)
	return info
}
