package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"journal-summary/chunker"
	"journal-summary/config"
	"journal-summary/retry"
)

// Engine 은 한 사용자의 항목을 요약한다.
// 모든 외부 호출은 재시도 정책으로 감싸고, 매 시도 직전에 Admitter 를 통과한다.
type Engine struct {
	generator    Generator
	admitter     Admitter
	policy       retry.Policy
	maxChunkSize int
}

// EngineConfig 는 Engine 의 조정 가능한 값들이다.
type EngineConfig struct {
	MaxChunkSize int
	Retry        retry.Policy
}

func NewEngine(generator Generator, admitter Admitter, cfg EngineConfig) *Engine {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if cfg.Retry.OnRetry == nil {
		cfg.Retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			config.Logger.Warnf("retrying in %s (attempt %d): %v", delay, attempt+1, err)
		}
	}
	return &Engine{
		generator:    generator,
		admitter:     admitter,
		policy:       cfg.Retry,
		maxChunkSize: cfg.MaxChunkSize,
	}
}

// SummarizeUser 는 entries 를 빈 줄로 이어붙여 요약한다.
// 길이가 한도를 넘으면 조각별로 요약한 뒤, 조각이 둘 이상일 때만 한 번 더 합친다.
func (e *Engine) SummarizeUser(ctx context.Context, entries []string) (string, error) {
	combined := strings.Join(entries, "\n\n")
	combinedLen := utf8.RuneCountInString(combined)

	if combinedLen <= e.maxChunkSize {
		return e.generate(ctx, StageSingle, SinglePrompt(combined))
	}

	chunks := chunker.Chunk(combined, e.maxChunkSize)
	config.Logger.Infof("entries too large (%d chars), split into %d chunks", combinedLen, len(chunks))

	userID := CallInfoFromContext(ctx).UserID
	chunkSummaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		config.Logger.Infof("processing chunk %d/%d for user %d", i+1, len(chunks), userID)

		summary, err := e.generate(ctx, StageChunk, ChunkPrompt(i, chunk))
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		chunkSummaries = append(chunkSummaries, summary)
	}

	if len(chunkSummaries) == 1 {
		return chunkSummaries[0], nil
	}

	merged, err := e.generate(ctx, StageMerge, MergePrompt(strings.Join(chunkSummaries, "\n\n")))
	if err != nil {
		return "", fmt.Errorf("merge %d chunk summaries: %w", len(chunkSummaries), err)
	}
	return merged, nil
}

// generate 는 승인 대기 후 외부 호출을 수행하며, 실패 시 정책에 따라 재시도한다.
func (e *Engine) generate(ctx context.Context, stage, prompt string) (string, error) {
	ctx = WithCallInfo(ctx, CallInfo{Stage: stage})
	return retry.Run(ctx, e.policy, func(ctx context.Context) (string, error) {
		if err := e.admitter.Wait(ctx, 1); err != nil {
			return "", fmt.Errorf("rate limit admission: %w", err)
		}
		return e.generator.Generate(ctx, prompt)
	})
}
