package activitylog

import (
	"context"
	"encoding/json"

	dErrors "vms/pkg/domain-errors"
)

// Appender is the write side of the log.
type Appender interface {
	Append(ctx context.Context, action string, details Details, level Level) (*Entry, error)
}

// Narrative appends the steps of one scenario in order. After the first failed
// append every later step is skipped; earlier entries stay written.
type Narrative struct {
	ctx  context.Context
	sink Appender
	err  error
}

func NewNarrative(ctx context.Context, sink Appender) *Narrative {
	return &Narrative{ctx: ctx, sink: sink}
}

func (n *Narrative) Info(action string, details Details) {
	n.Log(action, details, LevelInfo)
}

func (n *Narrative) Warn(action string, details Details) {
	n.Log(action, details, LevelWarn)
}

func (n *Narrative) Log(action string, details Details, level Level) {
	if n.err != nil {
		return
	}
	_, n.err = n.sink.Append(n.ctx, action, details, level)
}

// Doc logs a document as the entry details, keyed by its JSON field names.
func (n *Narrative) Doc(action string, v any) {
	if n.err != nil {
		return
	}
	details, err := ToDetails(v)
	if err != nil {
		n.err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode "+action)
		return
	}
	n.Info(action, details)
}

// Err returns the first append failure.
func (n *Narrative) Err() error {
	return n.err
}

// Message is the details of a plain text entry.
func Message(text string) Details {
	return Details{"message": text}
}

// ToDetails flattens a document into details via its JSON form.
func ToDetails(v any) (Details, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var details Details
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, err
	}
	return details, nil
}
