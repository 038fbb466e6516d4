package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"journal-summary/config"
	"journal-summary/models"
)

// GeminiGenerator 는 google.golang.org/genai 로 Gemini 모델을 호출한다.
// 클라이언트는 생성 시 한 번만 만들고 모든 호출이 공유한다.
type GeminiGenerator struct {
	client   *genai.Client
	model    string
	recorder UsageRecorder
}

// NewGeminiGenerator 는 apiKey 로 Gemini 클라이언트를 만든다.
// apiKey 가 비어 있으면 클라이언트 없이 생성되며, 모든 호출이 ErrMissingAPIKey 로 실패한다.
// recorder 가 nil 이면 사용량을 기록하지 않는다.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, recorder UsageRecorder) (*GeminiGenerator, error) {
	g := &GeminiGenerator{model: model, recorder: recorder}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	requestedAt := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	completedAt := time.Now()

	var text string
	if err == nil {
		text = result.Text()
		if strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
	}

	g.recordUsage(ctx, prompt, result, err, requestedAt, completedAt)

	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return text, nil
}

func (g *GeminiGenerator) recordUsage(ctx context.Context, prompt string, result *genai.GenerateContentResponse, callErr error, requestedAt, completedAt time.Time) {
	if g.recorder == nil {
		return
	}

	info := CallInfoFromContext(ctx)
	log := models.AILog{
		RequestID:   info.RequestID,
		UserID:      info.UserID,
		Stage:       info.Stage,
		ModelName:   g.model,
		PromptChars: utf8.RuneCountInString(prompt),
		DurationMs:  completedAt.Sub(requestedAt).Milliseconds(),
		RequestedAt: requestedAt,
		CompletedAt: completedAt,
	}
	if result != nil {
		log.ModelVersion = result.ModelVersion
		if result.UsageMetadata != nil {
			log.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
			log.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
			log.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		}
	}
	if callErr != nil {
		msg := callErr.Error()
		log.ErrorMessage = &msg
	}

	// 사용량 기록 실패는 요약 결과에 영향을 주지 않는다.
	if err := g.recorder.RecordUsage(context.WithoutCancel(ctx), log); err != nil {
		config.Logger.Warnf("failed to record llm usage: %v", err)
	}
}
