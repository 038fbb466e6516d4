package eventbus

import (
	"context"
	"encoding/json"
	"errors"
)

// Topic 은 기본 토픽 이름과 DLQ 토픽 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ 는 DLQ 토픽 이름을 반환합니다 (예: my_topic.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// Event 는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	LastError string          `json:"last_error,omitempty"`
	// Replays 는 DLQ 에서 기본 토픽으로 재주입된 횟수다.
	Replays   int             `json:"replays,omitempty"`
}

// EventHandler 는 이벤트 처리 함수의 시그니처입니다.
type EventHandler func(ctx context.Context, event Event) error

// EventBus 는 이벤트 발행 및 구독의 추상화입니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe 는 기본 토픽을 구독하고, 핸들러가 실패한 이벤트는 DLQ 로 보냅니다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartDLQReplayer 는 DLQ 토픽을 구독하고 지연 시간이 지난 이벤트를 기본 토픽으로 재발행합니다.
	StartDLQReplayer(ctx context.Context, groupID string, topic Topic, policy ReplayPolicy) error
	Close()
}

// Publisher 는 발행만 필요한 쪽에서 사용하는 좁은 인터페이스입니다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

var ErrDecodeFailed = errors.New("event payload decode failed")

// UndecodableEventType 은 봉투 자체를 해석하지 못해 DLQ 로 간 메시지에 붙는 타입이다.
// 재주입해도 처리될 수 없으므로 DLQ 에 그대로 보관된다.
const UndecodableEventType = "eventbus.undecodable"
