package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AILog stores LLM usage metadata for one outbound generation call.
// Prompt and response text are intentionally absent: journal entries and summaries are never persisted.
// Collection: ai_logs
type AILog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID    string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	UserID       int64              `bson:"user_id" json:"user_id"`
	Stage        string             `bson:"stage" json:"stage"`
	ModelName    string             `bson:"model_name" json:"model_name"`
	ModelVersion string             `bson:"model_version" json:"model_version"`
	PromptChars  int                `bson:"prompt_chars" json:"prompt_chars"`
	InputTokens  int64              `bson:"input_tokens" json:"input_tokens"`
	OutputTokens int64              `bson:"output_tokens" json:"output_tokens"`
	TotalTokens  int64              `bson:"total_tokens" json:"total_tokens"`
	DurationMs   int64              `bson:"duration_ms" json:"duration_ms"`
	ErrorMessage *string            `bson:"error_message,omitempty" json:"error_message,omitempty"`
	RequestedAt  time.Time          `bson:"requested_at" json:"requested_at"`
	CompletedAt  time.Time          `bson:"completed_at" json:"completed_at"`
}
