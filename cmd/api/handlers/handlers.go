package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-summary/cmd/api/dto"
	"journal-summary/cmd/api/trace"
	"journal-summary/services"
	"journal-summary/summarizer"
)

// SummaryAPI 는 핸들러가 사용하는 요약 서비스 기능이다. (services.SummaryService)
type SummaryAPI interface {
	SummarizeBatch(ctx context.Context, requestID string, batch summarizer.Batch) summarizer.Result
	BucketStatus() services.BucketStatus
}

// RootHandler 는 서비스 동작 여부를 단순 문자열로 알려준다.
func RootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Service is running")
}

// HealthHandler godoc
// @Summary      헬스 체크
// @Description  서비스 상태와 LLM 호출 토큰 버킷의 잔여 토큰을 반환한다.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(svc SummaryAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := svc.BucketStatus()
		c.JSON(http.StatusOK, dto.HealthResponseDTO{
			Status:          "ok",
			BucketCapacity:  status.Capacity,
			BucketAvailable: status.Available,
		})
	}
}

// SummaryHandler godoc
// @Summary      사용자별 일기 요약
// @Description  사용자 ID별 일기 항목을 받아 사용자마다 2인칭 요약을 생성한다.
// @Description  사용자들은 순차적으로 처리되며, 실패한 사용자는 오류 문구로 대체된다.
// @Tags         summary
// @Security     ApiKeyAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SummaryRequestDTO  true  "user id -> entries"
// @Success      200   {object}  dto.SummaryResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      403   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /api/summary [post]
func SummaryHandler(svc SummaryAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SummaryRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil || req == nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		// 클라이언트 연결이 끊겨도 이미 시작한 배치는 끝까지 처리한다.
		ctx := context.WithoutCancel(c.Request.Context())
		requestID := trace.RequestIDFromContext(ctx)

		result := svc.SummarizeBatch(ctx, requestID, summarizer.Batch(req))

		c.JSON(http.StatusOK, dto.SummaryResponseDTO(result))
	}
}
