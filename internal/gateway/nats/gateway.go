package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/emojiguess-go/internal/gateway"
	"github.com/mcoot/emojiguess-go/internal/model"
)

// Config holds connection settings for the NATS gateway
type Config struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

// DefaultConfig returns a config suitable for local development
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// envelope is the wire format published to subjects. Except carries the
// connection id a room fanout should skip; edge subscribers filter on it.
type envelope struct {
	Event   string             `json:"event"`
	Payload any                `json:"payload,omitempty"`
	Except  model.ConnectionID `json:"except,omitempty"`
}

// Gateway publishes events over NATS for multi-process deployments where
// the edge serving a connection's stream may not be the process that
// produced the event.
type Gateway struct {
	conn   *nats.Conn
	logger *slog.Logger
}

var _ gateway.Gateway = (*Gateway)(nil)

// New connects to NATS and returns a publishing gateway
func New(cfg Config, logger *slog.Logger) (*Gateway, error) {
	log := logger.With(slog.String("component", "nats"))

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	return &Gateway{conn: conn, logger: log}, nil
}

// SendToConnection publishes an event on the connection's direct subject
func (g *Gateway) SendToConnection(ctx context.Context, connID model.ConnectionID, event gateway.Event) error {
	return g.publish(connSubject(connID), envelope{Event: event.Name, Payload: event.Payload})
}

// SendToRoom publishes an event on the room's fanout subject
func (g *Gateway) SendToRoom(ctx context.Context, code model.RoomCode, event gateway.Event) error {
	return g.publish(roomSubject(code), envelope{Event: event.Name, Payload: event.Payload})
}

// SendToRoomExcept publishes a room event that subscribers deliver to every
// connection except the one named
func (g *Gateway) SendToRoomExcept(ctx context.Context, code model.RoomCode, except model.ConnectionID, event gateway.Event) error {
	return g.publish(roomSubject(code), envelope{Event: event.Name, Payload: event.Payload, Except: except})
}

// SubscribeRoom delivers every envelope published for a room to handler
// until the returned unsubscribe func is called
func (g *Gateway) SubscribeRoom(code model.RoomCode, handler func(eventName string, payload json.RawMessage, except model.ConnectionID)) (func(), error) {
	sub, err := g.conn.Subscribe(roomSubject(code), func(msg *nats.Msg) {
		var env struct {
			Event   string             `json:"event"`
			Payload json.RawMessage    `json:"payload"`
			Except  model.ConnectionID `json:"except"`
		}
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			g.logger.Warn("dropping malformed envelope", slog.String("subject", msg.Subject))
			return
		}
		handler(env.Event, env.Payload, env.Except)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// SubscribeConnection delivers every envelope published for a single
// connection to handler until the returned unsubscribe func is called
func (g *Gateway) SubscribeConnection(connID model.ConnectionID, handler func(eventName string, payload json.RawMessage)) (func(), error) {
	sub, err := g.conn.Subscribe(connSubject(connID), func(msg *nats.Msg) {
		var env struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			g.logger.Warn("dropping malformed envelope", slog.String("subject", msg.Subject))
			return
		}
		handler(env.Event, env.Payload)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close drains and closes the underlying connection
func (g *Gateway) Close() {
	if err := g.conn.Drain(); err != nil {
		g.conn.Close()
	}
}

func (g *Gateway) publish(subject string, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return g.conn.Publish(subject, data)
}
