// Package telemetry publishes window statistics to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/measure"
	"go.uber.org/zap"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Payload is the JSON document sent to the stats topic.
type Payload struct {
	Timestamp time.Time `json:"timestamp"`
	Samples   int       `json:"samples"`
	measure.Stats
}

// Publisher is a window renderer that publishes stats every N frames.
// Payloads are handed to a single sender goroutine that keeps only the
// latest one, so a slow broker never blocks Render. Render must not be
// called concurrently with itself.
type Publisher struct {
	cfg    config.MQTTConfig
	vref   float64
	logger *zap.Logger

	publish    func(topic string, payload []byte) error
	disconnect func()
	now        func() time.Time

	frames int

	mu      sync.Mutex
	started bool
	closed  bool
	pending chan []byte
	done    chan struct{}
}

// Dial connects to cfg.Broker and returns a publisher for cfg.Topic.
func Dial(cfg config.MQTTConfig, vref float64, logger *zap.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("failed to connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Broker, err)
	}
	logger.Info("connected to mqtt broker", zap.String("broker", cfg.Broker), zap.String("topic", cfg.Topic))

	p := newPublisher(cfg, vref, logger)
	p.publish = func(topic string, payload []byte) error {
		t := client.Publish(topic, 0, false, payload)
		if !t.WaitTimeout(cfg.Timeout) {
			return ErrPublishTimeout
		}
		return t.Error()
	}
	p.disconnect = func() { client.Disconnect(250) }
	return p, nil
}

func newPublisher(cfg config.MQTTConfig, vref float64, logger *zap.Logger) *Publisher {
	if cfg.PublishEvery <= 0 {
		cfg.PublishEvery = 1
	}
	return &Publisher{
		cfg:        cfg,
		vref:       vref,
		logger:     logger,
		publish:    func(string, []byte) error { return nil },
		disconnect: func() {},
		now:        time.Now,
		pending:    make(chan []byte, 1),
		done:       make(chan struct{}),
	}
}

// Render implements window.Renderer. It never waits for the broker.
func (p *Publisher) Render(history []float64) {
	p.frames++
	if p.frames < p.cfg.PublishEvery {
		return
	}
	p.frames = 0

	payload, err := Encode(p.now(), history, p.vref)
	if err != nil {
		p.logger.Error("failed to encode stats", zap.Error(err))
		return
	}
	p.enqueue(payload)
}

// enqueue replaces any payload the sender has not picked up yet.
func (p *Publisher) enqueue(payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if !p.started {
		p.started = true
		go p.run()
	}

	select {
	case <-p.pending:
		p.logger.Debug("dropped stale stats payload", zap.String("topic", p.cfg.Topic))
	default:
	}
	select {
	case p.pending <- payload:
	default:
	}
}

// run publishes queued payloads until pending is closed. Errors are logged.
func (p *Publisher) run() {
	defer close(p.done)
	for payload := range p.pending {
		if err := p.publish(p.cfg.Topic, payload); err != nil {
			p.logger.Warn("failed to publish stats", zap.String("topic", p.cfg.Topic), zap.Error(err))
		}
	}
}

// Close flushes the last queued payload and disconnects from the broker.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	started := p.started
	close(p.pending)
	p.mu.Unlock()

	if started {
		<-p.done
	}
	p.disconnect()
}

// Encode builds the JSON payload for history.
func Encode(now time.Time, history []float64, vref float64) ([]byte, error) {
	return json.Marshal(Payload{
		Timestamp: now.UTC(),
		Samples:   len(history),
		Stats:     measure.Compute(history, vref),
	})
}
