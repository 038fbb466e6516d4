package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"journal-summary/models"
)

type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

// RecordUsage 는 LLM 호출 한 건의 사용량 메타데이터를 저장한다.
func (r *AILogRepository) RecordUsage(ctx context.Context, log models.AILog) error {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, log)
	return err
}
