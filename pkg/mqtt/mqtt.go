// Package mqtt publishes messages to an mqtt broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// publishTimeout limits the wait for the acknowledge of a message.
	publishTimeout = 10 * time.Second
	// queueSize is the count of messages which may wait for the broker.
	queueSize = 16
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	client mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C    chan Message
	done chan struct{}
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C:    make(chan Message, queueSize),
		done: make(chan struct{}),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		debug.InfoLog.Print("no mqtt broker configured")
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(publishTimeout).
		SetAutoReconnect(true)

	return m.connect(mqttlib.NewClient(opts))
}

// connect uses client to reach the broker.
func (m *Handler) connect(client mqttlib.Client) error {
	m.client = client
	if err := m.ReConnect(); err != nil {
		return fmt.Errorf("connect mqtt broker: %w", err)
	}
	return nil
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.client.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect stops the service and ends the connection to the broker.
// Messages which are already queued are sent before.
func (m *Handler) Disconnect() error {
	close(m.C)
	<-m.done

	if m.client == nil {
		return nil
	}

	m.client.Disconnect(quiesce)
	return nil
}

// Publish marshals v to json and queues it for topic.
// If the queue is full, the message is dropped.
func (m *Handler) Publish(topic string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal mqtt message: %w", err)
	}

	select {
	case m.C <- Message{Topic: topic, Payload: b, Qos: 0, Retained: true}:
		return nil
	default:
		return fmt.Errorf("mqtt queue full, drop message to topic %v", topic)
	}
}

// Service listen to a message on the channel C and send the message to mqtt.
// It returns when C is closed.
// If no client or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	defer close(m.done)

	for msg := range m.C {
		if m.client == nil || msg.Topic == "" {
			continue
		}

		if !m.client.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		t := m.client.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		if !t.WaitTimeout(publishTimeout) {
			debug.ErrorLog.Printf("publishing topic %v: timeout", msg.Topic)
			continue
		}
		if err := t.Error(); err != nil {
			debug.ErrorLog.Printf("publishing topic %v: %v", msg.Topic, err)
		}
	}
}
