package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = 2 * time.Second
)

// Policy 는 지수 백오프 재시도 정책이다.
// 모든 오류를 재시도 대상으로 보며 지터는 두지 않는다.
type Policy struct {
	// MaxRetries 는 최초 호출 이후 허용되는 재시도 횟수다.
	MaxRetries int
	// BaseDelay 는 첫 번째 재시도 전 대기 시간이며, 이후 재시도마다 두 배가 된다.
	BaseDelay time.Duration

	// Sleep 은 백오프 대기 함수다. nil 이면 ctx 를 존중하는 타이머를 사용한다.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry 는 재시도를 예약할 때마다 호출된다. (로그 용도)
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy 는 2s, 4s, 8s, 16s, 32s 로 최대 5회 재시도한다.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// MaxDelay 는 Delay 가 돌려줄 수 있는 최대값이다. 두 배씩 늘리다 넘치면 여기서 멈춘다.
const MaxDelay = time.Duration(math.MaxInt64)

// Delay 는 attempt(0부터 시작) 번째 재시도 전 대기 시간을 반환한다.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		if d > MaxDelay/2 {
			return MaxDelay
		}
		d *= 2
	}
	return d
}

// Run 은 op 가 성공할 때까지 최대 MaxRetries 번 재시도한다.
// 재시도를 모두 소진하면 마지막 오류를 감싸서 반환한다.
func Run[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if attempt >= p.MaxRetries {
			var zero T
			return zero, fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			var zero T
			return zero, fmt.Errorf("retry aborted: %w", sleepErr)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
