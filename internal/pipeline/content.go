// Package pipeline wires extraction, classification, generation and
// injection into the two execution contexts that run them.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sagkhr23/linkdin-auto-reply/internal/classifier"
	"github.com/sagkhr23/linkdin-auto-reply/internal/generation"
	"github.com/sagkhr23/linkdin-auto-reply/internal/injector"
	"github.com/sagkhr23/linkdin-auto-reply/internal/logger"
	"github.com/sagkhr23/linkdin-auto-reply/internal/relay"
	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
	"github.com/sagkhr23/linkdin-auto-reply/internal/utils"
)

const maxLogLength = 200

// Sender delivers a message to another context and waits for its response.
type Sender interface {
	Send(ctx context.Context, msg relay.Message) (relay.Response, error)
}

// Approver gets the last word before a generated reply is inserted.
type Approver func(ctx context.Context, reply, reason string) bool

// Result is how a run ended.
type Result int

const (
	ResultNoMessage Result = iota
	ResultNotRecruiter
	ResultFailed
	ResultSkipped
	ResultDeclined
	ResultInjected
	ResultNoTarget
	ResultInsertFailed
)

func (r Result) String() string {
	switch r {
	case ResultNoMessage:
		return "no_message"
	case ResultNotRecruiter:
		return "not_recruiter"
	case ResultFailed:
		return "failed"
	case ResultSkipped:
		return "skipped"
	case ResultDeclined:
		return "declined"
	case ResultInjected:
		return "injected"
	case ResultNoTarget:
		return "no_target"
	case ResultInsertFailed:
		return "insert_failed"
	default:
		return "unknown"
	}
}

// Report summarizes one pipeline run.
type Report struct {
	RunID     string
	Result    Result
	Decision  classifier.Decision
	Outcome   generation.Outcome
	Injection *injector.Result
}

// Content is the side of the pipeline with document access.
type Content struct {
	extractor  *thread.Extractor
	classifier *classifier.Classifier
	backend    Sender
	injector   *injector.Injector
	approve    Approver
	logger     *zap.Logger
}

// Deps collects the collaborators of the content side.
type Deps struct {
	Extractor  *thread.Extractor
	Classifier *classifier.Classifier
	Backend    Sender
	Injector   *injector.Injector
	// Approve is optional; nil inserts every successful reply.
	Approve Approver
	Logger  *zap.Logger
}

// NewContent creates the content side.
func NewContent(deps Deps) *Content {
	return &Content{
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		backend:    deps.Backend,
		injector:   deps.Injector,
		approve:    deps.Approve,
		logger:     logger.WithFields(deps.Logger),
	}
}

// Register installs the GENERATE_REPLY listener on bus.
func (c *Content) Register(bus *relay.Bus) func() {
	return bus.Listen(relay.TypeGenerateReply, c.Handle)
}

// Handle runs the pipeline and acknowledges with {ok:true} whatever the run's result.
func (c *Content) Handle(ctx context.Context, _ relay.Message) relay.Response {
	c.Run(ctx)
	return relay.OK(nil)
}

// Run executes one activation: extract, classify, generate, inject, strictly in order.
func (c *Content) Run(ctx context.Context) Report {
	report := Report{RunID: uuid.NewString()}
	log := logger.ForRun(c.logger, report.RunID, "content")

	msg, ok := c.extractor.Extract(ctx)
	if !ok {
		log.Info("no message found")
		report.Result = ResultNoMessage
		return report
	}

	headline, _ := msg.Headline()
	log.Info("latest message",
		zap.String("message", utils.TruncateForLog(msg.Text, maxLogLength)),
		zap.String("headline", headline),
	)

	report.Decision = c.classifier.Classify(msg)
	if !report.Decision.Recruiter {
		log.Info("not detected as recruiter message, skipping", zap.String("stage", report.Decision.Stage))
		report.Result = ResultNotRecruiter
		return report
	}

	report.Outcome = c.RequestReply(ctx, msg)
	switch report.Outcome.Kind {
	case generation.KindFailure:
		log.Error("backend call failed", zap.String("error", report.Outcome.ErrorDetail))
		report.Result = ResultFailed
		return report
	case generation.KindSkip:
		log.Info("model chose to skip auto-reply", zap.String("reason", report.Outcome.Reason))
		report.Result = ResultSkipped
		return report
	}

	if c.approve != nil && !c.approve(ctx, report.Outcome.Reply, report.Outcome.Reason) {
		log.Info("reply declined")
		report.Result = ResultDeclined
		return report
	}

	injection := c.injector.Inject(ctx, report.Outcome.Reply, report.Outcome.Reason)
	report.Injection = &injection
	switch {
	case injection.Mutated:
		report.Result = ResultInjected
	case injection.Final == injector.StateNoTarget:
		report.Result = ResultNoTarget
	default:
		report.Result = ResultInsertFailed
	}

	fields := []zap.Field{zap.Stringer("result", report.Result), zap.Stringer("injection", injection.Final)}
	if report.Result == ResultInsertFailed {
		log.Error("reply was not inserted", append(fields, zap.Error(injection.Err))...)
		return report
	}
	log.Info("run finished", fields...)
	return report
}

// RequestReply asks the background context for a reply and interprets the envelope.
func (c *Content) RequestReply(ctx context.Context, msg thread.Message) generation.Outcome {
	payload, err := relay.Encode(generation.Request{
		Message:        msg.Text,
		ThreadContext:  nil,
		SenderHeadline: msg.SenderHeadline,
	})
	if err != nil {
		return generation.Failure(err)
	}

	resp, err := c.backend.Send(ctx, relay.Message{Type: relay.TypeCallBackend, Payload: payload})
	if err != nil {
		return generation.Failure(fmt.Errorf("relay: %w", err))
	}
	if !resp.OK {
		return generation.Failure(fmt.Errorf("backend: %s", resp.Error))
	}

	var reply generation.Reply
	if err := relay.Decode(resp.Data, &reply); err != nil {
		return generation.Failure(err)
	}
	return generation.Interpret(reply)
}
