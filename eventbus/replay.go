package eventbus

import "time"

// ReplayPolicy 는 DLQ 이벤트를 기본 토픽으로 되돌리는 규칙이다.
type ReplayPolicy struct {
	// Delay 는 DLQ 에 들어온 뒤 재주입까지 기다리는 시간이다.
	Delay time.Duration
	// MaxReplays 를 넘긴 이벤트는 DLQ 에 남겨 두고 더 이상 재주입하지 않는다.
	MaxReplays int
}

type replayAction int

const (
	replayNow replayAction = iota
	replayLater
	replayPark
)

// decideReplay 는 DLQ 메시지 하나에 대한 처리 방법과, 대기해야 한다면 남은 시간을 반환한다.
func decideReplay(p ReplayPolicy, evt Event, queuedAt, now time.Time) (replayAction, time.Duration) {
	if evt.Type == UndecodableEventType || evt.Replays >= p.MaxReplays {
		return replayPark, 0
	}
	readyAt := queuedAt.Add(p.Delay)
	if now.Before(readyAt) {
		return replayLater, readyAt.Sub(now)
	}
	return replayNow, 0
}

// pollBackoff 는 아직 준비되지 않은 메시지를 다시 읽기 전 대기 시간을 50ms~500ms 로 제한한다.
func pollBackoff(remaining time.Duration) time.Duration {
	return min(max(remaining, 50*time.Millisecond), 500*time.Millisecond)
}
