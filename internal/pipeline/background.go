package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/relay"
)

// Generator obtains a reply outcome for a request.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) generation.Outcome
}

// Background is the privileged side: it owns network access to the generation service.
type Background struct {
	generator Generator
	logger    *zap.Logger
}

// NewBackground creates the background handler.
func NewBackground(generator Generator, logger *zap.Logger) *Background {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Background{generator: generator, logger: logger.With(zap.String("context", "background"))}
}

// Register installs the CALL_BACKEND listener on bus.
func (b *Background) Register(bus *relay.Bus) func() {
	return bus.Listen(relay.TypeCallBackend, b.Handle)
}

// Handle answers CALL_BACKEND with {ok, data:{reply, reason}} or {ok:false, error}.
func (b *Background) Handle(ctx context.Context, msg relay.Message) relay.Response {
	var req generation.Request
	if err := relay.Decode(msg.Payload, &req); err != nil {
		b.logger.Warn("invalid backend payload", zap.Error(err))
		return relay.Fail(err.Error())
	}

	outcome := b.generator.Generate(ctx, req)
	if outcome.Kind == generation.KindFailure {
		b.logger.Error("backend fetch failed", zap.String("error", outcome.ErrorDetail))
		return relay.Fail(outcome.ErrorDetail)
	}

	data, err := relay.Encode(outcome.AsReply())
	if err != nil {
		return relay.Fail(err.Error())
	}
	return relay.OK(data)
}
