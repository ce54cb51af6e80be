package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	ServerPort int

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	Bucket         string

	WorkerStage string

	WhisperURL string
	LLMAPIBase string
	LLMAPIKey  string
	LLMModel   string

	FfmpegBin  string
	FfprobeBin string

	JWTPublicKey string
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SESSION_TTL", 86400)
	viper.SetDefault("FFMPEG_BIN", "ffmpeg")
	viper.SetDefault("FFPROBE_BIN", "ffprobe")

	if !viper.IsSet("REDIS_ADDR") {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}
	if !viper.IsSet("MINIO_ENDPOINT") {
		return nil, fmt.Errorf("MINIO_ENDPOINT is required")
	}
	if !viper.IsSet("MINIO_ACCESS_KEY") {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY is required")
	}
	if !viper.IsSet("MINIO_SECRET_KEY") {
		return nil, fmt.Errorf("MINIO_SECRET_KEY is required")
	}
	if !viper.IsSet("BUCKET") {
		return nil, fmt.Errorf("BUCKET is required")
	}

	return &Settings{
		ServerPort:     viper.GetInt("SERVER_PORT"),
		RedisAddr:      viper.GetString("REDIS_ADDR"),
		RedisPassword:  viper.GetString("REDIS_PASSWORD"),
		SessionTTL:     time.Duration(viper.GetInt("SESSION_TTL")) * time.Second,
		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		Bucket:         viper.GetString("BUCKET"),
		WorkerStage:    viper.GetString("WORKER_STAGE"),
		WhisperURL:     viper.GetString("WHISPER_URL"),
		LLMAPIBase:     viper.GetString("LLM_API_BASE"),
		LLMAPIKey:      viper.GetString("LLM_API_KEY"),
		LLMModel:       viper.GetString("LLM_MODEL"),
		FfmpegBin:      viper.GetString("FFMPEG_BIN"),
		FfprobeBin:     viper.GetString("FFPROBE_BIN"),
		JWTPublicKey:   viper.GetString("JWT_PUBLIC_KEY"),
	}, nil
}
