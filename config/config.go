package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// 설정 파일이나 환경변수에 값이 없을 때 사용하는 기본값.
const (
	DefaultPort                   = 3000
	DefaultShutdownTimeoutSeconds = 10
	DefaultGeminiModel            = "gemini-1.5-flash"
	DefaultBucketCapacity         = 60
	DefaultRefillIntervalMs       = 1000
	DefaultMaxChunkSize           = 30000
	DefaultMaxRetries             = 5
	DefaultRetryBaseDelayMs       = 2000
	DefaultMongoDatabase          = "journal_summary"
	DefaultRequestTopic           = "journal-summary.batch.requests"
	DefaultResultTopic            = "journal-summary.batch.summaries"
	DefaultTopicPartitions        = 3
	DefaultReplayDelaySeconds     = 300
	DefaultMaxReplays             = 3
)

type AppConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retry     RetryConfig     `yaml:"retry"`
	UsageLog  UsageLogConfig  `yaml:"usage_log"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Kafka     KafkaConfig     `yaml:"kafka"`

	// 아래 값들은 yaml 이 아니라 환경변수(.env 포함)에서만 읽는다.
	APISecret    string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port                   int `yaml:"port"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

// RateLimitConfig 는 외부 LLM 호출 전체에 적용되는 토큰 버킷 설정이다.
type RateLimitConfig struct {
	// Capacity 는 버킷의 최대 토큰 수(순간 최대 호출 수)이다.
	Capacity int `yaml:"capacity"`

	// RefillIntervalMs 는 토큰 1개가 다시 채워지는 데 걸리는 시간(ms)이다.
	RefillIntervalMs int `yaml:"refill_interval_ms"`
}

// RefillRatePerMs 는 ms 당 충전되는 토큰 수를 반환한다.
func (c RateLimitConfig) RefillRatePerMs() float64 {
	return 1 / float64(c.RefillIntervalMs)
}

type ChunkingConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
}

type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMs int `yaml:"base_delay_ms"`
}

// UsageLogConfig 는 LLM 사용량 메타데이터(토큰 수, 지연 시간) 기록 여부를 정한다.
// 프롬프트와 응답 본문은 저장하지 않는다.
type UsageLogConfig struct {
	Enabled bool `yaml:"enabled"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type KafkaConfig struct {
	RequestTopic string `yaml:"request_topic"`
	ResultTopic  string `yaml:"result_topic"`
	Partitions   int    `yaml:"partitions"`

	// DLQ 재주입 설정 (cmd/retryworker)
	ReplayDelaySeconds int `yaml:"replay_delay_seconds"`
	MaxReplays         int `yaml:"max_replays"`
}

var config *AppConfig

func InitApp() {
	base := GetBasePath()

	// load environment variables
	godotenv.Load(filepath.Join(base, ENV_FILE))

	c, err := Load(filepath.Join(base, CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

// Load 는 주어진 yaml 파일과 현재 환경변수로 설정을 구성한다.
// 파일이 없으면 기본값만으로 구성한다.
func Load(path string) (*AppConfig, error) {
	var c AppConfig

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 설정 파일 없이도 기본값으로 동작할 수 있다.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&c)
	applyDefaults(&c)
	return &c, nil
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyEnv(c *AppConfig) {
	c.APISecret = os.Getenv("API_SECRET")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if c.GeminiAPIKey == "" {
		// 이전 배포에서 쓰던 이름
		c.GeminiAPIKey = os.Getenv("GEMINI_KEY")
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = DefaultShutdownTimeoutSeconds
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
	if c.RateLimit.Capacity <= 0 {
		c.RateLimit.Capacity = DefaultBucketCapacity
	}
	if c.RateLimit.RefillIntervalMs <= 0 {
		c.RateLimit.RefillIntervalMs = DefaultRefillIntervalMs
	}
	if c.Chunking.MaxChunkSize <= 0 {
		c.Chunking.MaxChunkSize = DefaultMaxChunkSize
	}
	if c.Retry.MaxRetries <= 0 {
		c.Retry.MaxRetries = DefaultMaxRetries
	}
	if c.Retry.BaseDelayMs <= 0 {
		c.Retry.BaseDelayMs = DefaultRetryBaseDelayMs
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = DefaultMongoDatabase
	}
	if c.Kafka.RequestTopic == "" {
		c.Kafka.RequestTopic = DefaultRequestTopic
	}
	if c.Kafka.ResultTopic == "" {
		c.Kafka.ResultTopic = DefaultResultTopic
	}
	if c.Kafka.Partitions <= 0 {
		c.Kafka.Partitions = DefaultTopicPartitions
	}
	if c.Kafka.ReplayDelaySeconds <= 0 {
		c.Kafka.ReplayDelaySeconds = DefaultReplayDelaySeconds
	}
	if c.Kafka.MaxReplays <= 0 {
		c.Kafka.MaxReplays = DefaultMaxReplays
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
