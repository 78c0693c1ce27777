package generation

import (
	"errors"
	"strings"
)

// SkipSentinel is the reply value with which the model declines to answer.
const SkipSentinel = "SKIP_AUTOREPLY"

// ErrEmptyReply is reported when the service answers without reply text.
var ErrEmptyReply = errors.New("generation service returned an empty reply")

// Request is the generation service input. ThreadContext is reserved for
// multi-turn context and is always nil today.
type Request struct {
	Message        string  `json:"message" mapstructure:"message"`
	ThreadContext  *string `json:"thread_context" mapstructure:"thread_context"`
	SenderHeadline *string `json:"sender_headline" mapstructure:"sender_headline"`
}

// Reply is the generation service output.
type Reply struct {
	Reply  string `json:"reply" mapstructure:"reply"`
	Reason string `json:"reason" mapstructure:"reason"`
}

// Kind tags an Outcome.
type Kind int

const (
	KindFailure Kind = iota
	KindSuccess
	KindSkip
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindSkip:
		return "skip"
	default:
		return "failure"
	}
}

// Outcome is the result of one generation round trip.
type Outcome struct {
	Kind        Kind
	Reply       string
	Reason      string
	ErrorDetail string
}

func Success(reply, reason string) Outcome {
	return Outcome{Kind: KindSuccess, Reply: reply, Reason: reason}
}

func Skip(reason string) Outcome {
	return Outcome{Kind: KindSkip, Reason: reason}
}

func Failure(err error) Outcome {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return Outcome{Kind: KindFailure, ErrorDetail: detail}
}

// Interpret maps a service reply to an outcome: the sentinel is a Skip, a
// blank reply is a Failure.
func Interpret(r Reply) Outcome {
	reply := strings.TrimSpace(r.Reply)
	switch reply {
	case SkipSentinel:
		return Skip(r.Reason)
	case "":
		return Failure(ErrEmptyReply)
	default:
		return Success(r.Reply, r.Reason)
	}
}

// AsReply converts a non-failure outcome back to its wire form.
func (o Outcome) AsReply() Reply {
	if o.Kind == KindSkip {
		return Reply{Reply: SkipSentinel, Reason: o.Reason}
	}
	return Reply{Reply: o.Reply, Reason: o.Reason}
}
