// Package mqttlog posílá logy služby do MQTT, odkud si je bere log-collector.
package mqttlog

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TopicPrefix je kořen topiců s logy ("logs/<služba>").
const TopicPrefix = "logs"

// publisher je podmnožina mqtt.Client, kterou writer potřebuje.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Writer implementuje io.Writer. Vše, co se do něj zapíše, se odešle do MQTT.
type Writer struct {
	client publisher
	topic  string
}

// NewWriter vytvoří writer pro danou službu, topic bude např. "logs/bins-api".
func NewWriter(client publisher, serviceName string) *Writer {
	return &Writer{
		client: client,
		topic:  fmt.Sprintf("%s/%s", TopicPrefix, serviceName),
	}
}

// Topic vrací topic, kam writer publikuje.
func (w *Writer) Topic() string { return w.topic }

// Write volá slog pro každý záznam.
// Token.Wait() nevoláme, logování nesmí zdržovat aplikaci (fire-and-forget, QoS 0).
func (w *Writer) Write(p []byte) (int, error) {
	// Payload musíme zkopírovat, slog buffer 'p' po návratu znovu použije.
	payload := make([]byte, len(p))
	copy(payload, p)

	w.client.Publish(w.topic, 0, false, payload)
	return len(p), nil
}
