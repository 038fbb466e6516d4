package services

import (
	"context"

	"journal-summary/eventbus"
	"journal-summary/events"
)

// EventService Processor용 이벤트 발행 서비스
type EventService struct {
	publisher   eventbus.Publisher
	resultTopic eventbus.Topic
}

// NewEventService 새로운 이벤트 서비스 생성
func NewEventService(publisher eventbus.Publisher, resultTopic eventbus.Topic) *EventService {
	return &EventService{
		publisher:   publisher,
		resultTopic: resultTopic,
	}
}

// PublishBatchSummarized 배치 요약 완료 이벤트 발행
func (s *EventService) PublishBatchSummarized(ctx context.Context, requestID string, summaries map[int64]string) error {
	event := events.BatchSummarizedEvent{
		BaseEvent: events.NewBaseEvent(events.BatchSummarized, "processor"),
		RequestID: requestID,
		Summaries: summaries,
	}

	evt, err := eventbus.NewJSONEvent(event.ID, string(event.Type), event)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, s.resultTopic.Base(), evt)
}
