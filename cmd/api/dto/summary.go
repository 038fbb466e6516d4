package dto

// SummaryRequestDTO는 사용자 ID(문자열로 인코딩된 정수)별 일기 항목 목록이다.
//
//	{"1": ["오늘은...", "어제는..."], "2": ["..."]}
type SummaryRequestDTO map[int64][]string

// SummaryResponseDTO는 사용자 ID별 요약이다.
// 요약에 실패한 사용자는 "Unable to generate summary due to an error." 값을 가진다.
type SummaryResponseDTO map[int64]string

// HealthResponseDTO는 서비스 상태와 외부 호출 토큰 버킷 상태를 담는다.
type HealthResponseDTO struct {
	Status          string  `json:"status" example:"ok"`
	BucketCapacity  int     `json:"bucket_capacity" example:"60"`
	BucketAvailable float64 `json:"bucket_available" example:"59.5"`
}
