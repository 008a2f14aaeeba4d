// Package notify publishes iqama reminders over MQTT. A periodic job scans
// the favorited mosques' cached schedules and emits a message at fixed
// marks before each iqama.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Reminder is one iqama notification payload.
type Reminder struct {
	MosqueID    string    `json:"mosque_id"`
	Prayer      string    `json:"prayer"`
	Iqama       time.Time `json:"iqama"`
	MinutesLeft int64     `json:"minutes_left"`
}

// Publisher delivers reminders to subscribers.
type Publisher interface {
	PublishReminder(r Reminder) error
	Close()
}

// MQTTPublisher publishes reminders to prayers/{mosque_id}/reminders.
type MQTTPublisher struct {
	client mqtt.Client
}

var _ Publisher = (*MQTTPublisher)(nil)

// NewMQTTPublisher connects to the broker. Connection loss is handled by
// the client's automatic reconnect.
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = func(client mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{client: client}, nil
}

func (p *MQTTPublisher) PublishReminder(r Reminder) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("prayers/%s/reminders", r.MosqueID)
	token := p.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish reminder to %s: %w", topic, token.Error())
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
