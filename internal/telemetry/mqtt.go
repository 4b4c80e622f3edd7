// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	qos            = 0
	connectTimeout = 10 * time.Second
	// DisconnectQuiesce is the grace period in ms given to in-flight work on Disconnect.
	DisconnectQuiesce = 250
)

// Connect opens an MQTT connection to broker with clientID.
func Connect(broker, clientID string, log *zap.Logger) (mqtt.Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("MQTT connection lost", zap.String("broker", broker), zap.Error(err))
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Info("connected to MQTT broker", zap.String("broker", broker), zap.String("client_id", clientID))
	return client, nil
}

// Publisher publishes frames on one topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher returns a Publisher writing retained frames to topic.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Topic returns the frame topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish sends f retained at QoS 0 and waits for the client to hand it off.
func (p *Publisher) Publish(f Frame) error {
	payload, err := Encode(f)
	if err != nil {
		return err
	}
	if token := p.client.Publish(p.topic, qos, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", p.topic, token.Error())
	}
	return nil
}

// PublishControl sends a control document to topic.
func PublishControl(client mqtt.Client, topic string, c Control) error {
	payload, err := Encode(c)
	if err != nil {
		return err
	}
	if token := client.Publish(topic, qos, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// SubscribeFrames calls handle with every frame published on topic.
// Payloads that don't decode are logged and dropped.
func SubscribeFrames(client mqtt.Client, topic string, log *zap.Logger, handle func(Frame)) error {
	if log == nil {
		log = zap.NewNop()
	}
	token := client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		f, err := DecodeFrame(msg.Payload())
		if err != nil {
			log.Warn("dropping frame", zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		handle(f)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	log.Info("subscribed", zap.String("topic", topic))
	return nil
}

// SubscribeControl calls handle with every valid control document on topic.
func SubscribeControl(client mqtt.Client, topic string, log *zap.Logger, handle func(Control)) error {
	if log == nil {
		log = zap.NewNop()
	}
	token := client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c, err := DecodeControl(msg.Payload())
		if err != nil {
			log.Warn("dropping control message", zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		handle(c)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	log.Info("subscribed", zap.String("topic", topic))
	return nil
}
