package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"journal-summary/config"
)

// KafkaEventBus 는 confluent-kafka-go 라이브러리를 사용한 EventBus 구현체입니다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

// NewKafkaEventBus 는 Kafka Producer 를 초기화합니다.
func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka Producer 생성 실패: %w", err)
	}

	// 전달 보고서 외의 Producer 이벤트(오류 등)를 로깅한다.
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.Logger.Errorf("메시지 전달 실패 %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				config.Logger.Errorf("Kafka 오류: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

// Close 는 남은 메시지를 플러시한 뒤 Producer 를 종료합니다.
func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		config.Logger.Warnf("플러시 후에도 %d개의 메시지가 남아 있습니다.", remaining)
	}
	k.Producer.Close()
	config.Logger.Info("Kafka Producer 종료.")
}

// Publish 는 지정된 토픽에 이벤트를 발행하고 전달 결과를 기다립니다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("메시지 전달 실패: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Subscribe 는 기본 토픽을 구독하고 핸들러를 실행합니다.
// 핸들러가 실패하거나 메시지를 해석할 수 없으면 DLQ 로 보낸 뒤 커밋합니다.
// 요약 파이프라인은 내부에서 이미 재시도하므로 여기서는 다시 재시도하지 않습니다.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  k.Brokers,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return fmt.Errorf("kafka Consumer 생성 실패: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("토픽 구독 실패 %s: %w", topic.Base(), err)
	}

	config.Logger.Infof("컨슈머 (%s) 시작됨. 구독 토픽: %s", groupID, topic.Base())

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("컨슈머 종료 중.")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("컨슈머 치명적 오류: %w", err)
				}
			}
			config.Logger.Errorf("ReadMessage 오류: %v", err)
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.Logger.Errorf("토픽 %s의 이벤트 페이로드 오류: %v. DLQ 로 보냅니다.", topic.Base(), err)
			raw, _ := json.Marshal(string(msg.Value))
			evt = Event{ID: string(msg.Key), Type: UndecodableEventType, Payload: raw}
		} else {
			err = handler(ctx, evt)
		}

		if err != nil && ctx.Err() != nil {
			// 종료 중 중단된 이벤트는 DLQ 로 보내지도 커밋하지도 않고 재전달에 맡긴다.
			config.Logger.Warnf("이벤트 %s 처리 중 종료됨. 오프셋 커밋 안함.", evt.ID)
			return ctx.Err()
		}

		if err != nil {
			evt.LastError = err.Error()
			if publishErr := k.Publish(ctx, topic.DLQ(), evt); publishErr != nil {
				config.Logger.Errorf("DLQ %s 발행 실패: %v. 오프셋 커밋 안함.", topic.DLQ(), publishErr)
				continue
			}
		}

		if _, err := c.CommitMessage(msg); err != nil {
			config.Logger.Errorf("오프셋 커밋 오류: %v", err)
		}
	}
}

// StartDLQReplayer 는 DLQ 토픽을 구독하고 policy.Delay 가 지난 이벤트를 기본 토픽으로 재발행합니다.
// MaxReplays 를 넘긴 이벤트는 로그만 남기고 커밋하여 DLQ 에 보관합니다.
func (k *KafkaEventBus) StartDLQReplayer(ctx context.Context, groupID string, topic Topic, policy ReplayPolicy) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return fmt.Errorf("kafka DLQ 재주입기 생성 실패: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.DLQ()}, nil); err != nil {
		return fmt.Errorf("DLQ 토픽 구독 실패 %s: %w", topic.DLQ(), err)
	}

	config.Logger.Infof("DLQ 재주입 컨슈머 (%s) 시작됨. 구독 토픽: %s", groupID, topic.DLQ())

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("DLQ 재주입 컨슈머 종료 중.")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("DLQ 재주입 컨슈머 치명적 오류: %w", err)
				}
			}
			config.Logger.Errorf("DLQ 재주입 컨슈머 ReadMessage 오류: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.Logger.Errorf("DLQ %s의 이벤트 페이로드 오류: %v. 메시지를 건너뛰고 커밋합니다.", topic.DLQ(), err)
			c.CommitMessage(msg)
			continue
		}

		action, remaining := decideReplay(policy, evt, msg.Timestamp, time.Now())
		switch action {
		case replayPark:
			config.Logger.Warnf("이벤트 %s 는 재주입 한도(%d)를 넘어 DLQ 에 보관합니다. last_error=%s", evt.ID, policy.MaxReplays, evt.LastError)
			c.CommitMessage(msg)
			continue
		case replayLater:
			// 커밋하지 않고 같은 위치부터 다시 읽는다.
			time.Sleep(pollBackoff(remaining))
			if err := c.Seek(msg.TopicPartition, 0); err != nil {
				config.Logger.Errorf("DLQ 오프셋 되감기 실패: %v", err)
			}
			continue
		}

		evt.Replays++
		config.Logger.Infof("이벤트 %s를 %s에서 %s로 재주입. (재주입: %d)", evt.ID, topic.DLQ(), topic.Base(), evt.Replays)

		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			config.Logger.Errorf("이벤트 %s 재주입 실패: %v. 오프셋 커밋 안함.", evt.ID, err)
			continue
		}

		if _, err := c.CommitMessage(msg); err != nil {
			config.Logger.Errorf("재주입 후 커밋 오류: %v", err)
		}
	}
}
