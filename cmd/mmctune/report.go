package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"
)

const mqttTimeout = 5 * time.Second

// publish sends a calibration report to an MQTT broker with QoS 0.
func publish(ctx context.Context, addr, clientID, topic string, payload []byte) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, mqttTimeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(mqttTimeout))

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, _ io.Reader) error {
			logger.Debug("mqtt:unexpected-publish", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	})
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(clientID))
	logger.Debug("mqtt:connect", slog.String("addr", addr))
	if err := client.Connect(ctx, conn, &varconn); err != nil {
		logger.Error("mqtt:connect-failed", slog.String("reason", err.Error()))
		return err
	}
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}
	pubVar := mqtt.VariablesPublish{
		TopicName:        []byte(topic),
		PacketIdentifier: 1,
	}
	err = client.PublishPayload(flags, pubVar, payload)
	if err != nil {
		logger.Error("mqtt:publish-failed", slog.Any("reason", err))
		return err
	}
	logger.Info("mqtt:published", slog.String("topic", topic), slog.Int("len", len(payload)))
	client.Disconnect(errors.New("report sent"))
	return nil
}
