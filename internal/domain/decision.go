package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrMalformedDecision marks a model reply that failed strict validation.
// Callers degrade to Hold and keep the raw reply for audit.
var ErrMalformedDecision = errors.New("malformed model decision")

// Decision is the advisor's verdict for one cycle. Immutable.
type Decision struct {
	Action    Action
	Reasoning string
	// RawReply is the unmodified model output, preserved for audit even
	// when validation fails.
	RawReply string
}

// modelReply mirrors the JSON contract the model is instructed to follow.
type modelReply struct {
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
}

// ParseDecision strictly parses a model reply into a Decision.
// Invalid JSON, an unknown action, or missing reasoning yield
// ErrMalformedDecision; nothing is ever guessed.
func ParseDecision(raw string) (*Decision, error) {
	payload := sanitizeReply(raw)

	if !json.Valid([]byte(payload)) {
		return nil, errors.Wrap(ErrMalformedDecision, "reply is not valid JSON")
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return nil, errors.Wrapf(ErrMalformedDecision, "reply does not match schema: %v", err)
	}

	action, err := ParseAction(reply.Action)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedDecision, "%v", err)
	}

	if strings.TrimSpace(reply.Reasoning) == "" {
		return nil, errors.Wrap(ErrMalformedDecision, "reasoning field is required")
	}

	return &Decision{
		Action:    action,
		Reasoning: reply.Reasoning,
		RawReply:  raw,
	}, nil
}

// HoldDecision builds a fallback Hold with an explanation and the raw reply
// that triggered it.
func HoldDecision(reason, raw string) *Decision {
	return &Decision{
		Action:    ActionHold,
		Reasoning: reason,
		RawReply:  raw,
	}
}

// sanitizeReply strips markdown code fences some models wrap around JSON.
func sanitizeReply(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecisionEvent is the audit record persisted for every cycle's decision.
type DecisionEvent struct {
	Time      time.Time `json:"ts"`
	Pair      string    `json:"pair"`
	Action    string    `json:"action"`
	Reasoning string    `json:"reasoning"`
	RawReply  string    `json:"raw_reply,omitempty"`
	Price     string    `json:"price"`
}

// DecisionEventRecord bundles a decision event with its store index.
type DecisionEventRecord struct {
	Index uint64
	Event DecisionEvent
}
