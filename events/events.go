package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	BatchSummaryRequested EventType = "batch.summary_requested"
	BatchSummarized       EventType = "batch.summarized"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent 는 새 ID 와 현재 시각으로 BaseEvent 를 만든다.
func NewBaseEvent(eventType EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Version:   "1.0",
	}
}

// BatchSummaryRequestedEvent 사용자별 일기 항목 요약 요청 이벤트
type BatchSummaryRequestedEvent struct {
	BaseEvent
	RequestID string             `json:"request_id"`
	Entries   map[int64][]string `json:"entries"`
}

// BatchSummarizedEvent 배치 요약 완료 이벤트. 실패한 사용자는 오류 문구가 들어간다.
type BatchSummarizedEvent struct {
	BaseEvent
	RequestID string           `json:"request_id"`
	Summaries map[int64]string `json:"summaries"`
}
