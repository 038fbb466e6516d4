package handlers

import (
	"context"
	"fmt"

	eventServices "journal-summary/cmd/processor/services"
	"journal-summary/config"
	"journal-summary/eventbus"
	"journal-summary/events"
	"journal-summary/summarizer"
)

// BatchSummarizer 배치 요약 수행자 (services.SummaryService)
type BatchSummarizer interface {
	SummarizeBatch(ctx context.Context, requestID string, batch summarizer.Batch) summarizer.Result
}

// EventHandlers 이벤트 핸들러 모음
type EventHandlers struct {
	eventService *eventServices.EventService
	summaries    BatchSummarizer
}

// NewEventHandlers 새로운 이벤트 핸들러 생성
func NewEventHandlers(eventService *eventServices.EventService, summaries BatchSummarizer) *EventHandlers {
	return &EventHandlers{
		eventService: eventService,
		summaries:    summaries,
	}
}

// Handle 이벤트 타입에 따라 분기한다. 다른 서비스용 이벤트는 무시 (커밋)
func (h *EventHandlers) Handle(ctx context.Context, evt eventbus.Event) error {
	switch events.EventType(evt.Type) {
	case events.BatchSummaryRequested:
		v, err := eventbus.DecodeJSON[events.BatchSummaryRequestedEvent](evt)
		if err != nil {
			return err
		}
		return h.HandleBatchSummaryRequested(ctx, &v)
	default:
		config.Logger.Debugf("ignoring event %s of type %q", evt.ID, evt.Type)
		return nil
	}
}

// HandleBatchSummaryRequested 배치 요약 요청 처리 (사용자별 실패는 결과 안에서 오류 문구로 대체된다)
func (h *EventHandlers) HandleBatchSummaryRequested(ctx context.Context, event *events.BatchSummaryRequestedEvent) error {
	requestID := event.RequestID
	if requestID == "" {
		requestID = event.ID
	}
	config.Logger.Infof("handling BatchSummaryRequested event %s with %d users", requestID, len(event.Entries))

	if event.Entries == nil {
		return fmt.Errorf("batch %s has no entries", requestID)
	}

	result := h.summaries.SummarizeBatch(ctx, requestID, summarizer.Batch(event.Entries))

	// 종료로 중단된 배치는 재시도를 다 쓰지 않은 오류 문구가 섞여 있으므로 발행하지 않는다.
	if err := ctx.Err(); err != nil {
		config.Logger.Warnf("batch %s interrupted by shutdown, leaving it for redelivery", requestID)
		return err
	}

	if err := h.eventService.PublishBatchSummarized(ctx, requestID, result); err != nil {
		config.Logger.Errorf("failed to publish BatchSummarized event: %v", err)
		return err
	}

	config.Logger.Infof("batch %s summarized for %d users", requestID, len(result))
	return nil
}
