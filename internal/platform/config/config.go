package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EvaluationQueueName    string
	EvaluationLockKey      string
	EvaluationLockTTLSecs  int
	ExecutorURL            string
	ExecutorWebhookURL     string
	RoomEventChannelPrefix string

	DefaultRuntimeLimitMs int
	DefaultMemoryLimitKb  int
	RoomCodeLength        int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                getEnv("API_PORT", "8080"),
		JWTKey:                 []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                 time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "user"),
		DBPassword:             getEnv("DB_PASSWORD", "password"),
		DBName:                 getEnv("DB_NAME", "reelcode_db"),
		DBSslMode:              getEnv("DB_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		EvaluationQueueName:    getEnv("EVALUATION_QUEUE_NAME", "evaluation_jobs_queue"),
		EvaluationLockKey:      getEnv("EVALUATION_LOCK_KEY", "evaluation_job_lock"),
		EvaluationLockTTLSecs:  getEnvAsInt("EVALUATION_LOCK_TTL_SECONDS", 300),
		ExecutorURL:            getEnv("EXECUTOR_URL", "http://localhost:9090/execute"),
		ExecutorWebhookURL:     getEnv("EXECUTOR_WEBHOOK_URL", "http://localhost:8080/api/v1/webhook/execution"),
		RoomEventChannelPrefix: getEnv("ROOM_EVENT_CHANNEL_PREFIX", "room_events:"),
		DefaultRuntimeLimitMs:  getEnvAsInt("DEFAULT_RUNTIME_LIMIT_MS", 5000),
		DefaultMemoryLimitKb:   getEnvAsInt("DEFAULT_MEMORY_LIMIT_KB", 65536),
		RoomCodeLength:         getEnvAsInt("ROOM_CODE_LENGTH", 6),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
