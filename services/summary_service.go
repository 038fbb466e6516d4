package services

import (
	"context"
	"time"

	"journal-summary/config"
	"journal-summary/db"
	"journal-summary/ratelimit"
	"journal-summary/repositories"
	"journal-summary/retry"
	"journal-summary/summarizer"
)

// SummaryService 는 프로세스 전역 토큰 버킷과 요약 파이프라인을 묶는다.
// API 서버와 processor 가 같은 방식으로 구성한다.
type SummaryService struct {
	bucket      *ratelimit.TokenBucket
	coordinator *summarizer.Coordinator
	closeFns    []func(context.Context) error
}

// BucketStatus 는 토큰 버킷의 현재 상태다.
type BucketStatus struct {
	Capacity  int     `json:"capacity"`
	Available float64 `json:"available"`
}

// NewSummaryServiceFromConfig 는 설정으로 Gemini 생성기, 토큰 버킷, 재시도 정책을 구성한다.
// usage_log 가 켜져 있으면 Mongo 에 사용량 메타데이터를 기록하며, 연결 실패 시 기록 없이 계속한다.
func NewSummaryServiceFromConfig(ctx context.Context, cfg config.AppConfig) (*SummaryService, error) {
	s := &SummaryService{}

	var recorder summarizer.UsageRecorder
	if cfg.UsageLog.Enabled {
		if err := db.Init(ctx, cfg.Mongo); err != nil {
			config.Logger.Warnf("usage log disabled, failed to initialize MongoDB: %v", err)
		} else {
			recorder = repositories.NewAILogRepository(db.Database())
			s.closeFns = append(s.closeFns, db.Close)
		}
	}

	if cfg.GeminiAPIKey == "" {
		config.Logger.Warn("GEMINI_API_KEY is not set, every summary call will fail")
	}
	generator, err := summarizer.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Gemini.Model, recorder)
	if err != nil {
		return nil, err
	}

	s.bucket = ratelimit.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRatePerMs())
	engine := summarizer.NewEngine(generator, s.bucket, summarizer.EngineConfig{
		MaxChunkSize: cfg.Chunking.MaxChunkSize,
		Retry: retry.Policy{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
		},
	})
	s.coordinator = summarizer.NewCoordinator(engine)
	return s, nil
}

// NewSummaryService 는 이미 구성된 버킷과 요약기로 서비스를 만든다.
func NewSummaryService(bucket *ratelimit.TokenBucket, users summarizer.UserSummarizer) *SummaryService {
	return &SummaryService{bucket: bucket, coordinator: summarizer.NewCoordinator(users)}
}

// SummarizeBatch 는 requestID 를 로그/사용량 기록에 연결한 뒤 배치를 요약한다.
func (s *SummaryService) SummarizeBatch(ctx context.Context, requestID string, batch summarizer.Batch) summarizer.Result {
	ctx = summarizer.WithCallInfo(ctx, summarizer.CallInfo{RequestID: requestID})
	return s.coordinator.SummarizeBatch(ctx, batch)
}

func (s *SummaryService) BucketStatus() BucketStatus {
	return BucketStatus{
		Capacity:  s.bucket.Capacity(),
		Available: s.bucket.Available(),
	}
}

// Close 는 서비스가 연 외부 자원을 정리한다.
func (s *SummaryService) Close(ctx context.Context) {
	for _, fn := range s.closeFns {
		if err := fn(ctx); err != nil {
			config.Logger.Warnf("failed to close resource: %v", err)
		}
	}
}
