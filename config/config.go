package config

import (
	"os"
	"strconv"
)

// Config 全部运行配置，从环境变量读取（main里先加载.env）
type Config struct {
	Addr string
	DSN  string

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// 邮件通知总开关，关闭后所有通知静默跳过
	EmailsEnabled bool

	// 前端地址，用于拼接邮件里的链接
	FrontendHost string
}

// Load 读取环境变量并填充默认值
func Load() *Config {
	return &Config{
		Addr:          getEnv("addr", ":8080"),
		DSN:           getEnv("dsn", "root:root@tcp(127.0.0.1:3306)/alumni?charset=utf8mb4&parseTime=True&loc=Local"),
		SMTPHost:      getEnv("smtpHost", ""),
		SMTPPort:      getEnv("smtpPort", "587"),
		SMTPUser:      getEnv("smtpUser", ""),
		SMTPPassword:  getEnv("smtpPassword", ""),
		SMTPFrom:      getEnv("smtpFrom", getEnv("smtpUser", "")),
		EmailsEnabled: getBoolEnv("emailsEnabled", false),
		FrontendHost:  getEnv("frontendHost", "http://localhost:5173"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
