// Package telemetry publishes per-period committed rates over MQTT so site
// dashboards can follow a run live.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/chargeflow/core/metrics"
	"github.com/kilianp07/chargeflow/infra/logger"
	"github.com/kilianp07/chargeflow/internal/eventbus"
)

// Config defines the connection parameters for the MQTT publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies connection defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "chargeflow"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "chargeflow"
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("telemetry: broker is required")
	}
	return nil
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher pushes period events to an MQTT broker as JSON.
type Publisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPublisher connects to the broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	log := logger.New("telemetry")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

type periodMessage struct {
	Period        int                `json:"period"`
	TotalCurrentA float64            `json:"total_current_a"`
	Rates         map[string]float64 `json:"rates"`
	Timestamp     time.Time          `json:"timestamp"`
}

// Publish sends one period event to <prefix>/periods.
func (p *Publisher) Publish(ev coremetrics.PeriodEvent) error {
	msg := periodMessage{
		Period:        ev.Period,
		TotalCurrentA: ev.TotalCurrentA,
		Rates:         ev.Rates,
		Timestamp:     ev.Time,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := p.cli.Publish(p.prefix+"/periods", p.qos, false, payload)
	token.Wait()
	return token.Error()
}

// Run consumes period events from the bus until the context is cancelled or
// the bus closes. Publish failures are logged, not fatal: telemetry never
// stops a simulation.
func (p *Publisher) Run(ctx context.Context, bus *eventbus.Bus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := p.Publish(ev); err != nil {
				p.log.Warnf("publish period %d: %v", ev.Period, err)
			}
		}
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}
