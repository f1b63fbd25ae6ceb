// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pdiddy/neural-ingest/pkg/types"
)

const defaultPublishTimeout = 5 * time.Second

// publisher is the subset of mqtt.Client the uploader needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes fingerprint records as JSON at QoS 1.
type MQTT struct {
	client  publisher
	w       io.Writer
	topic   string // may contain {device_id}
	timeout time.Duration
}

// DialMQTT connects to cfg.Broker and returns an MQTT uploader.
func DialMQTT(cfg types.MQTTConfig, w io.Writer) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		slog.Info("mqtt connection established", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "broker", cfg.Broker, "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", cfg.Broker, token.Error())
	}

	return newMQTT(client, cfg, w), nil
}

func newMQTT(client publisher, cfg types.MQTTConfig, w io.Writer) *MQTT {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &MQTT{client: client, w: w, topic: cfg.Topic, timeout: timeout}
}

func (m *MQTT) Name() string { return string(types.UploaderMQTT) }

// Upload publishes rec to the device topic and waits for the broker.
func (m *MQTT) Upload(_ context.Context, rec types.Fingerprint) error {
	payload, err := Encode(rec)
	if err != nil {
		return err
	}

	topic := formatTopic(m.topic, rec.DeviceID)
	fmt.Fprintf(m.w, "--> [PUSH] Publishing to mqtt topic %s...\n", topic)

	token := m.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("publishing fingerprint %s: timed out after %s", rec.ID, m.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing fingerprint %s: %w", rec.ID, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

// formatTopic replaces the {device_id} placeholder.
func formatTopic(pattern, deviceID string) string {
	return strings.ReplaceAll(pattern, "{device_id}", deviceID)
}
