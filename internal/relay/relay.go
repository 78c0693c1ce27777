// Package relay passes request/response messages between isolated execution
// contexts. Every request crosses the boundary as JSON and resolves exactly once.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	// TypeGenerateReply starts a pipeline run in the content context.
	TypeGenerateReply = "GENERATE_REPLY"
	// TypeCallBackend asks the background context to call the generation service.
	TypeCallBackend = "CALL_BACKEND"
)

// ErrNoListener is returned when nothing listens for a message type.
var ErrNoListener = errors.New("could not establish connection: receiving end does not exist")

// Message is a request sent across the boundary.
type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Response is the envelope a listener answers with. OK distinguishes
// application success from application failure; transport failures are
// reported by Send's error instead.
type Response struct {
	OK    bool           `json:"ok"`
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

// OK builds a success envelope.
func OK(data map[string]any) Response {
	return Response{OK: true, Data: data}
}

// Fail builds a failure envelope.
func Fail(detail string) Response {
	return Response{OK: false, Error: detail}
}

// Handler answers a message. It may block; the sender waits until it returns.
type Handler func(ctx context.Context, msg Message) Response

// Bus routes messages of one context to the handler registered for their type.
type Bus struct {
	name     string
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewBus creates an empty bus. The name only tags log lines.
func NewBus(name string, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bus{
		name:     name,
		handlers: make(map[string]Handler),
		logger:   logger.With(zap.String("bus", name)),
	}
}

// Listen registers h for msgType, replacing any previous handler. The returned
// function removes the registration.
func (b *Bus) Listen(msgType string, h Handler) func() {
	b.mu.Lock()
	b.handlers[msgType] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, msgType)
		b.mu.Unlock()
	}
}

// Send delivers msg and waits for the single response. It returns
// ErrNoListener at once when no handler is registered and ctx.Err() when the
// caller gives up first.
func (b *Bus) Send(ctx context.Context, msg Message) (Response, error) {
	b.mu.RLock()
	h, ok := b.handlers[msg.Type]
	b.mu.RUnlock()
	if !ok {
		return Response{}, fmt.Errorf("%s: %w", msg.Type, ErrNoListener)
	}

	var delivered Message
	if err := roundTrip(msg, &delivered); err != nil {
		return Response{}, fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	// One slot: the handler goroutine never blocks on an abandoned request.
	result := make(chan Response, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("listener panicked", zap.String("type", delivered.Type), zap.Any("panic", r))
				result <- Fail(fmt.Sprintf("listener panicked: %v", r))
			}
		}()
		result <- h(ctx, delivered)
	}()

	b.logger.Debug("message sent", zap.String("type", msg.Type))

	select {
	case resp := <-result:
		var received Response
		if err := roundTrip(resp, &received); err != nil {
			return Response{}, fmt.Errorf("decode %s response: %w", msg.Type, err)
		}
		return received, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func roundTrip(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Encode turns a struct with mapstructure tags into a message payload.
func Encode(v any) (map[string]any, error) {
	out := make(map[string]any)
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}

// Decode fills out from a message payload.
func Decode(payload map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: false,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
