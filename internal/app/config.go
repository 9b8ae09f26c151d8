package app

import (
	"strings"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/utils"
)

type Config struct {
	HTTPAddr     string
	ServiceName  string
	Environment  string
	Version      string
	AllowOrigins []string
	StaleDays    int
}

func LoadConfig(log *logger.Logger) Config {
	httpAddr := utils.GetEnv("HTTP_ADDR", ":8080", log)
	serviceName := utils.GetEnv("SERVICE_NAME", "obligo-backend", log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)
	version := utils.GetEnv("SERVICE_VERSION", "dev", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)
	staleDays := utils.GetEnvAsInt("STUCK_STALE_DAYS", 5, log)
	return Config{
		HTTPAddr:     httpAddr,
		ServiceName:  serviceName,
		Environment:  environment,
		Version:      version,
		AllowOrigins: splitOrigins(origins),
		StaleDays:    staleDays,
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		origins = append(origins, part)
	}
	return origins
}
