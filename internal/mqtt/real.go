package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/streetlight/internal/logic"
)

// RealClient publishes to an actual MQTT broker and receives command lines
// on the command topic. Messages published while disconnected are held in a
// bounded outbox and replayed on reconnect.
type RealClient struct {
	client   paho.Client
	logger   zerolog.Logger
	commands chan string

	mu    sync.Mutex
	pend  *outbox
	drops int
}

// NewRealClient creates a client connected to the given broker. The paho
// client keeps reconnecting in the background after the initial connect.
func NewRealClient(broker string, logger zerolog.Logger) (*RealClient, error) {
	c := &RealClient{
		logger:   logger,
		commands: make(chan string, 16),
		pend:     newOutbox(64),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("streetlight").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect)

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect runs on every (re)connect: restore the command subscription and
// flush anything that queued up while the link was down.
func (c *RealClient) onConnect(client paho.Client) {
	if token := client.Subscribe(TopicCommand, 1, c.onCommand); token.WaitTimeout(5*time.Second) && token.Error() != nil {
		c.logger.Error().Err(token.Error()).Str("topic", TopicCommand).Msg("command subscribe failed")
	}

	c.mu.Lock()
	msgs := c.pend.drain()
	drops := c.drops
	c.drops = 0
	c.mu.Unlock()

	if drops > 0 {
		c.logger.Warn().Int("dropped", drops).Msg("outbox overflowed while disconnected")
	}
	for _, m := range msgs {
		client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	if len(msgs) > 0 {
		c.logger.Info().Int("replayed", len(msgs)).Msg("flushed queued messages after reconnect")
	}
}

func (c *RealClient) onCommand(_ paho.Client, msg paho.Message) {
	line := strings.TrimSpace(string(msg.Payload()))
	select {
	case c.commands <- line:
	default:
		c.logger.Warn().Str("line", line).Msg("command channel full, dropping")
	}
}

// Commands returns the channel of command lines received on TopicCommand.
func (c *RealClient) Commands() <-chan string {
	return c.commands
}

func (c *RealClient) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		if c.pend.put(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained}) {
			c.drops++
		}
		c.mu.Unlock()
		return nil
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishEvent sends a controller event to the broker.
func (c *RealClient) PublishEvent(event logic.Event) error {
	payload, err := FormatEventPayload(event)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}
	// QoS 1: transitions are the events consumers care about most
	return c.publish(TopicEvents, 1, false, payload)
}

// PublishTelemetry sends a telemetry snapshot to the broker.
func (c *RealClient) PublishTelemetry(td logic.TelemetryData) error {
	payload, err := FormatTelemetryPayload(td)
	if err != nil {
		return fmt.Errorf("format telemetry payload: %w", err)
	}
	// QoS 0: the next snapshot supersedes a lost one
	return c.publish(TopicTelemetry, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the broker.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publish(TopicSystem, 1, event.Retained, payload)
}

// PublishResponse sends a command response line.
func (c *RealClient) PublishResponse(line string) error {
	return c.publish(TopicResponse, 0, false, []byte(line))
}

// IsConnected reports whether the broker connection is open.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
