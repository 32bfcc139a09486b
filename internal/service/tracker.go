package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caredoc-expiry/internal/config"
	"caredoc-expiry/internal/database"
	"caredoc-expiry/internal/engine"
	"caredoc-expiry/internal/models"
	"caredoc-expiry/internal/notifier"
	"caredoc-expiry/internal/report"
	"caredoc-expiry/internal/repository"
	"caredoc-expiry/internal/rowsource"
	"caredoc-expiry/internal/rules"
	"caredoc-expiry/internal/scheduler"
	"caredoc-expiry/internal/statuscache"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackerService 文档到期跟踪服务
// Wires the row source, classification engine, formatter and notifiers into
// the weekly pipeline. Each run is an independent pass over a fresh row
// snapshot; nothing carries over between runs.
type TrackerService struct {
	config      *config.Config
	logger      *zap.Logger
	location    *time.Location
	rules       []models.Rule
	source      rowsource.Source
	engine      *engine.Engine
	notifiers   []notifier.Notifier
	statusCache *statuscache.Cache
	scheduler   *scheduler.Scheduler

	db           *sql.DB
	redisClient  *redis.Client
	mqttNotifier *notifier.MQTTNotifier
}

// NewTrackerService 创建跟踪服务
func NewTrackerService(cfg *config.Config, logger *zap.Logger) (*TrackerService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Schedule.Timezone, err)
	}

	s := &TrackerService{
		config:   cfg,
		logger:   logger,
		location: location,
		rules:    rules.Default(),
		engine:   engine.NewEngine(logger),
	}

	switch cfg.Source.Kind {
	case config.SourceExcel:
		s.source = rowsource.NewExcelSource(cfg.Source.ExcelPath, s.rules, logger)
	case config.SourceSheetURL:
		s.source = rowsource.NewSheetHTTPSource(cfg.Source.SheetURL, s.rules, logger)
	case config.SourcePostgres:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.db = db
		s.source = repository.NewPostgresDocumentSource(db, logger)
	}

	if cfg.Notify.Console {
		s.notifiers = append(s.notifiers, notifier.NewConsoleNotifier())
	} else {
		s.notifiers = append(s.notifiers, notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			From:      cfg.SMTP.From,
			Recipient: cfg.Notify.Recipient,
		}, logger))
	}
	if cfg.Notify.MQTT.Enabled {
		mqttNotifier, err := notifier.NewMQTTNotifier(notifier.MQTTConfig{
			Broker:   cfg.Notify.MQTT.Broker,
			ClientID: cfg.Notify.MQTT.ClientID,
			Username: cfg.Notify.MQTT.Username,
			Password: cfg.Notify.MQTT.Password,
			Topic:    cfg.Notify.MQTT.Topic,
			QoS:      cfg.Notify.MQTT.QoS,
		}, logger)
		if err != nil {
			return nil, err
		}
		s.mqttNotifier = mqttNotifier
		s.notifiers = append(s.notifiers, mqttNotifier)
	}

	if cfg.Redis.Enabled {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.redisClient.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.statusCache = statuscache.NewCache(
			s.redisClient,
			cfg.Redis.StatusKey,
			time.Duration(cfg.Redis.StatusTTLSec)*time.Second,
			logger,
		)
	}

	s.scheduler = scheduler.NewScheduler(location, logger)

	return s, nil
}

// RunOnce executes one full scan: fetch rows, classify, and deliver the
// grouped report. A run that finds nothing suppresses notification
// entirely; that is the defined terminal state, not an error.
func (s *TrackerService) RunOnce(ctx context.Context) error {
	runID := uuid.New().String()
	startedAt := time.Now().In(s.location)
	runLogger := s.logger.With(zap.String("run_id", runID))

	runLogger.Info("Starting document expiration scan",
		zap.String("source_kind", s.config.Source.Kind),
	)

	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rows: %w", err)
	}

	rep := s.engine.Classify(rows, s.rules, startedAt)
	rep.RunID = runID

	runLogger.Info("Classification completed",
		zap.Int("row_count", len(rows)),
		zap.Int("total_expired", rep.TotalExpired),
		zap.Int("total_expiring_soon", rep.TotalExpiringSoon),
	)

	status := &statuscache.RunStatus{
		RunID:             runID,
		StartedAt:         startedAt,
		RowCount:          len(rows),
		TotalExpired:      rep.TotalExpired,
		TotalExpiringSoon: rep.TotalExpiringSoon,
	}

	var deliveryErr error
	if rep.Empty() {
		runLogger.Info("Nothing to report, notification suppressed")
	} else {
		summary := report.Build(rep, s.rules, startedAt)
		subject := summary.Subject(s.config.Notify.SubjectPrefix)

		sent := 0
		for _, n := range s.notifiers {
			if err := n.Send(ctx, subject, summary); err != nil {
				runLogger.Error("Failed to deliver report",
					zap.String("notifier", n.Name()),
					zap.Error(err),
				)
				deliveryErr = err
				continue
			}
			sent++
		}
		status.NotificationSent = sent > 0
		if deliveryErr != nil {
			status.DeliveryError = deliveryErr.Error()
		}
	}

	status.FinishedAt = time.Now().In(s.location)
	if s.statusCache != nil {
		if err := s.statusCache.Store(ctx, status); err != nil {
			runLogger.Warn("Failed to store run status", zap.Error(err))
		}
	}

	runLogger.Info("Scan completed",
		zap.Bool("notification_sent", status.NotificationSent),
		zap.Duration("elapsed", status.FinishedAt.Sub(startedAt)),
	)
	return deliveryErr
}

// Start runs the service until the context is cancelled. With scheduling
// enabled it installs the weekly trigger; RunOnStart additionally fires an
// immediate scan.
func (s *TrackerService) Start(ctx context.Context) error {
	if s.config.Schedule.RunOnStart {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("Initial scan failed", zap.Error(err))
		}
	}

	if !s.config.Schedule.Enabled {
		s.logger.Info("Scheduling disabled, exiting after initial run")
		return nil
	}

	schedule := scheduler.WeeklySchedule{
		Weekday:  time.Weekday(s.config.Schedule.Weekday),
		Hour:     s.config.Schedule.Hour,
		Minute:   s.config.Schedule.Minute,
		Location: s.location,
	}
	if err := s.scheduler.Install(schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("Scheduled scan failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	s.scheduler.Start()

	<-ctx.Done()
	s.scheduler.Stop()
	return nil
}

// Stop 释放连接资源
func (s *TrackerService) Stop() {
	s.scheduler.Remove()

	if s.mqttNotifier != nil {
		s.mqttNotifier.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Error closing redis connection", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}
	s.logger.Info("Tracker service stopped")
}
