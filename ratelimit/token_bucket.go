package ratelimit

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrExceedsCapacity 는 버킷 용량보다 많은 토큰을 기다리려 할 때 반환된다.
// 이런 요청은 아무리 기다려도 허용될 수 없다.
var ErrExceedsCapacity = errors.New("requested tokens exceed bucket capacity")

// TokenBucket 은 외부 LLM 호출 전체에 적용되는 프로세스 단위 승인 제어기다.
// 충전은 golang.org/x/time/rate 의 Limiter 가 호출 시각 기준으로 지연 계산한다.
// 프로세스 시작 시 한 번 생성하고 모든 요약 호출이 같은 인스턴스를 공유한다.
type TokenBucket struct {
	mu      sync.Mutex
	limiter *rate.Limiter

	// lastSeen 는 지금까지 관측한 가장 늦은 시각이다. 시계가 뒤로 가도 이 값 아래로 내려가지 않는다.
	lastSeen time.Time

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option 은 TokenBucket 생성 옵션이다.
type Option func(*TokenBucket)

// WithClock 은 현재 시각 함수를 교체한다. (테스트용)
func WithClock(clock func() time.Time) Option {
	return func(b *TokenBucket) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithSleeper 는 Wait 에서 사용하는 대기 함수를 교체한다. (테스트용)
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *TokenBucket) {
		if sleep != nil {
			b.sleep = sleep
		}
	}
}

// NewTokenBucket 은 가득 찬 상태의 버킷을 생성한다.
// refillRatePerMs 는 ms 당 충전되는 토큰 수다. (예: 1/1000 => 초당 1개)
func NewTokenBucket(capacity int, refillRatePerMs float64, opts ...Option) *TokenBucket {
	b := &TokenBucket{
		clock: time.Now,
		sleep: SleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.limiter = rate.NewLimiter(rate.Limit(refillRatePerMs*1000), capacity)
	b.lastSeen = b.clock()
	// 생성 시각을 기준점으로 고정한다. 가득 찬 버킷에서 0개를 가져가는 것은 항상 성공한다.
	b.limiter.AllowN(b.lastSeen, 0)
	return b
}

// now 는 단조 증가하는 현재 시각을 반환한다. mu 를 잡은 상태에서 호출해야 한다.
// Limiter 는 과거 시각으로 토큰을 가져가면 기준점을 되돌리므로, 같은 구간이 두 번 충전되지 않게 막는다.
func (b *TokenBucket) now() time.Time {
	if t := b.clock(); t.After(b.lastSeen) {
		b.lastSeen = t
	}
	return b.lastSeen
}

// Take 는 n 개의 토큰을 원자적으로 차감한다. 토큰이 부족하면 상태를 바꾸지 않고 false 를 반환한다.
// 시계가 뒤로 간 경우 경과 시간은 0 으로 취급된다.
func (b *TokenBucket) Take(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.limiter.AllowN(b.now(), n)
}

// WaitTime 은 n 개의 토큰이 모일 때까지 남은 시간을 반환한다. 이미 충분하면 0 이다.
func (b *TokenBucket) WaitTime(n int) time.Duration {
	b.mu.Lock()
	tokens := b.limiter.TokensAt(b.now())
	b.mu.Unlock()

	if tokens >= float64(n) {
		return 0
	}
	waitSec := (float64(n) - tokens) / float64(b.limiter.Limit())
	d := time.Duration(math.Ceil(waitSec * float64(time.Second)))
	if d <= 0 {
		// 부동소수 오차로 남은 부족분이 1ns 미만이어도 0 을 돌려주면 Wait 가 제자리에서 돈다.
		d = 1
	}
	return d
}

// Wait 는 n 개의 토큰을 차감할 수 있을 때까지 대기한 뒤 차감한다.
// 다른 호출자가 먼저 토큰을 가져갈 수 있으므로 대기 후 다시 확인한다.
func (b *TokenBucket) Wait(ctx context.Context, n int) error {
	if n > b.limiter.Burst() {
		return ErrExceedsCapacity
	}
	for !b.Take(n) {
		if err := b.sleep(ctx, b.WaitTime(n)); err != nil {
			return err
		}
	}
	return nil
}

// Available 은 충전을 반영한 현재 토큰 수를 반환한다.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.limiter.TokensAt(b.now())
}

// Capacity 는 버킷의 최대 토큰 수를 반환한다.
func (b *TokenBucket) Capacity() int {
	return b.limiter.Burst()
}

// SleepContext 는 d 만큼 대기하되 ctx 가 취소되면 즉시 반환한다.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
