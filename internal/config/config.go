package config

import (
	"fmt"
	"os"
	"strconv"
)

// Source kinds for the patient row source.
const (
	SourceExcel    = "excel"
	SourceSheetURL = "sheet_url"
	SourcePostgres = "postgres"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN 获取数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// Config 服务配置
// The original deployment buried the recipient address and column layout in
// module constants; everything tunable now lives here, loaded from the
// environment with explicit defaults.
type Config struct {
	Source struct {
		Kind      string // excel | sheet_url | postgres
		ExcelPath string
		SheetURL  string
	}

	Database DatabaseConfig

	Redis struct {
		Enabled      bool
		Addr         string
		Password     string
		DB           int
		StatusKey    string
		StatusTTLSec int
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}

	Notify struct {
		Recipient     string // single static recipient
		SubjectPrefix string
		Console       bool // print report to stdout instead of email (dev)
		MQTT          struct {
			Enabled  bool
			Broker   string
			ClientID string
			Username string
			Password string
			Topic    string
			QoS      byte
		}
	}

	Schedule struct {
		Enabled    bool
		Weekday    int // 0 = Sunday, per cron convention
		Hour       int
		Minute     int
		Timezone   string
		RunOnStart bool
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Source.Kind = getEnv("SOURCE_KIND", SourceExcel)
	cfg.Source.ExcelPath = getEnv("SOURCE_EXCEL_PATH", "patient_documents.xlsx")
	cfg.Source.SheetURL = getEnv("SOURCE_SHEET_URL", "")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "caredoc")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 5)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 2)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.StatusKey = getEnv("REDIS_STATUS_KEY", "caredoc:expiry:last-run")
	cfg.Redis.StatusTTLSec = getEnvInt("REDIS_STATUS_TTL_SEC", 14*24*3600) // two weeks

	cfg.SMTP.Host = getEnv("SMTP_HOST", "localhost")
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 587)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnv("SMTP_FROM", "caredoc-expiry@localhost")

	cfg.Notify.Recipient = getEnv("NOTIFY_RECIPIENT", "")
	cfg.Notify.SubjectPrefix = getEnv("NOTIFY_SUBJECT_PREFIX", "Patient Document Expirations")
	cfg.Notify.Console = getEnvBool("NOTIFY_CONSOLE", false)
	cfg.Notify.MQTT.Enabled = getEnvBool("MQTT_ENABLED", false)
	cfg.Notify.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.Notify.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "caredoc-expiry")
	cfg.Notify.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.Notify.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.Notify.MQTT.Topic = getEnv("MQTT_TOPIC", "caredoc/expiry/report")
	cfg.Notify.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.Schedule.Enabled = getEnvBool("SCHEDULE_ENABLED", true)
	cfg.Schedule.Weekday = getEnvInt("SCHEDULE_WEEKDAY", 1) // Monday
	cfg.Schedule.Hour = getEnvInt("SCHEDULE_HOUR", 8)
	cfg.Schedule.Minute = getEnvInt("SCHEDULE_MINUTE", 0)
	cfg.Schedule.Timezone = getEnv("SCHEDULE_TIMEZONE", "America/New_York")
	cfg.Schedule.RunOnStart = getEnvBool("SCHEDULE_RUN_ON_START", false)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// Validate checks the parts that cannot have a safe default.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceExcel, SourceSheetURL, SourcePostgres:
	default:
		return fmt.Errorf("unsupported source kind: %s", c.Source.Kind)
	}
	if c.Source.Kind == SourceSheetURL && c.Source.SheetURL == "" {
		return fmt.Errorf("SOURCE_SHEET_URL is required for sheet_url source")
	}
	if !c.Notify.Console && c.Notify.Recipient == "" {
		return fmt.Errorf("NOTIFY_RECIPIENT is required, please set the report recipient address")
	}
	if c.Schedule.Weekday < 0 || c.Schedule.Weekday > 6 {
		return fmt.Errorf("SCHEDULE_WEEKDAY must be 0-6, got %d", c.Schedule.Weekday)
	}
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return fmt.Errorf("SCHEDULE_HOUR must be 0-23, got %d", c.Schedule.Hour)
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return fmt.Errorf("SCHEDULE_MINUTE must be 0-59, got %d", c.Schedule.Minute)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
