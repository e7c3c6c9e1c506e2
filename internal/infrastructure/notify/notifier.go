// Package notify publica los eventos de ciclo de vida hacia una cola Redis que consume un
// notificador externo (tarjetas Teams, correo).
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/suministros-api/internal/application/ports"
)

// DefaultQueue lista Redis por defecto.
const DefaultQueue = "jobs:notifications"

// Job sobre genérico de la cola: el tipo del evento y su cuerpo JSON.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var (
	_ ports.Notifier = (*RedisNotifier)(nil)
	_ ports.Notifier = NoopNotifier{}
)

// RedisNotifier encola cada evento con LPUSH; el consumidor hace BRPOP.
type RedisNotifier struct {
	rdb   *redis.Client
	queue string
}

// NewRedisNotifier construye el notificador sobre rdb. queue vacío usa DefaultQueue.
func NewRedisNotifier(rdb *redis.Client, queue string) *RedisNotifier {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisNotifier{rdb: rdb, queue: queue}
}

// Publish encola el evento.
func (n *RedisNotifier) Publish(ctx context.Context, ev ports.Event) error {
	encoded, err := Encode(ev)
	if err != nil {
		return err
	}
	if err := n.rdb.LPush(ctx, n.queue, encoded).Err(); err != nil {
		return fmt.Errorf("notify: lpush %s: %w", n.queue, err)
	}
	return nil
}

// Encode serializa el evento dentro del sobre Job.
func Encode(ev ports.Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("notify: encode payload: %w", err)
	}
	return json.Marshal(Job{Type: ev.Type, Payload: payload})
}

// Decode operación inversa de Encode (consumidores y tests).
func Decode(b []byte) (ports.Event, error) {
	var (
		job Job
		ev  ports.Event
	)
	if err := json.Unmarshal(b, &job); err != nil {
		return ev, fmt.Errorf("notify: decode job: %w", err)
	}
	if err := json.Unmarshal(job.Payload, &ev); err != nil {
		return ev, fmt.Errorf("notify: decode payload: %w", err)
	}
	return ev, nil
}

// NoopNotifier descarta los eventos (REDIS_URL sin configurar).
type NoopNotifier struct{}

// Publish no hace nada.
func (NoopNotifier) Publish(context.Context, ports.Event) error { return nil }
