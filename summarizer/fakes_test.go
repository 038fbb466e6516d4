package summarizer_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"journal-summary/retry"
	"journal-summary/summarizer"
)

var errModelDown = errors.New("model down")

// fakeGenerator 는 호출된 프롬프트를 기록하고, fail 이 true 를 돌려주는 프롬프트는 실패시킨다.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	fail    func(prompt string) bool
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if g.fail != nil && g.fail(prompt) {
		return "", errModelDown
	}
	return "summary-" + string(rune('A'+len(g.prompts)-1)), nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *fakeGenerator) callsContaining(s string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, p := range g.prompts {
		if strings.Contains(p, s) {
			n++
		}
	}
	return n
}

type countingAdmitter struct {
	mu       sync.Mutex
	admitted int
}

func (a *countingAdmitter) Wait(context.Context, int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.admitted++
	return nil
}

func noSleepPolicy(maxRetries int) retry.Policy {
	return retry.Policy{
		MaxRetries: maxRetries,
		BaseDelay:  2 * time.Second,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}
}

func newTestEngine(gen summarizer.Generator, admitter summarizer.Admitter) *summarizer.Engine {
	return summarizer.NewEngine(gen, admitter, summarizer.EngineConfig{
		MaxChunkSize: 30000,
		Retry:        noSleepPolicy(5),
	})
}
