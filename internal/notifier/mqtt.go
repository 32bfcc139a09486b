package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"caredoc-expiry/internal/models"
	"caredoc-expiry/internal/report"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTConfig MQTT 发布配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// MQTTNotifier 把 JSON 汇总发布到 MQTT 主题
// Lets facility dashboards subscribe to the weekly run result; disabled
// unless a broker is configured.
type MQTTNotifier struct {
	client mqtt.Client
	cfg    MQTTConfig
	logger *zap.Logger
}

// NewMQTTNotifier 创建 MQTT 通知器并连接 broker
func NewMQTTNotifier(cfg MQTTConfig, logger *zap.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{client: client, cfg: cfg, logger: logger}, nil
}

func (n *MQTTNotifier) Name() string { return "mqtt" }

// Send publishes the structured summary as JSON.
func (n *MQTTNotifier) Send(ctx context.Context, subject string, summary *report.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return n.wrap(fmt.Errorf("failed to marshal summary: %w", err))
	}

	token := n.client.Publish(n.cfg.Topic, n.cfg.QoS, false, payload)
	token.Wait()
	if token.Error() != nil {
		return n.wrap(fmt.Errorf("failed to publish to topic %s: %w", n.cfg.Topic, token.Error()))
	}

	n.logger.Info("Report published to MQTT",
		zap.String("topic", n.cfg.Topic),
		zap.Int("payload_bytes", len(payload)),
	)
	return nil
}

// Close 断开 broker 连接
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}

func (n *MQTTNotifier) wrap(err error) error {
	return &models.DeliveryError{Provider: n.Name(), Recipient: n.cfg.Topic, Err: err}
}
