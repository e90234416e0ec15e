package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/go-playground/validator/v10"
)

// ErrDecode is returned when a payload is not a decodable edge message.
var ErrDecode = errors.New("undecodable edge payload")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses a JSON payload holding either a single EdgeMessage or a Batch.
func Decode(data []byte) ([]EdgeMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		if trimmed[0] == '[' {
			var list []EdgeMessage
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDecode, err)
			}
			return list, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if _, ok := fields["transforms"]; ok {
		var b Batch
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return b.Transforms, nil
	}

	var m EdgeMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return []EdgeMessage{m}, nil
}

// Validate checks the message shape, returning an error wrapping
// domain.ErrMalformedEdge that names every missing field.
func Validate(m EdgeMessage) error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrMalformedEdge, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace())
	}
	return fmt.Errorf("%w: missing %s", domain.ErrMalformedEdge, strings.Join(fields, ", "))
}

// Result summarizes one Apply call.
type Result struct {
	Accepted int     `json:"accepted"`
	Rejected int     `json:"rejected"`
	Errors   []error `json:"-"`
}

// Applier pushes messages into a sink.
type Applier struct {
	sink   ports.EdgeSink
	logger *slog.Logger
}

// Option configures the Applier.
type Option func(*Applier)

// WithLogger configures a logger for the Applier.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier creates an Applier writing to sink.
func NewApplier(sink ports.EdgeSink, opts ...Option) *Applier {
	a := &Applier{sink: sink, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply validates each message and upserts the well-formed ones with class.
// Malformed messages are logged and counted; they never abort the batch.
func (a *Applier) Apply(msgs []EdgeMessage, class domain.Classification) Result {
	var res Result
	for _, m := range msgs {
		if err := Validate(m); err != nil {
			a.logger.Warn("ingest: malformed edge message",
				"parent", m.Header.FrameID,
				"child", m.ChildFrameID,
				"error", err,
			)
			res.Rejected++
			res.Errors = append(res.Errors, err)
			continue
		}
		if err := a.sink.UpsertEdge(m.Update(class)); err != nil {
			res.Rejected++
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Accepted++
	}
	return res
}

// ApplyPayload decodes data and applies it. Decode failures count as one rejection.
func (a *Applier) ApplyPayload(data []byte, class domain.Classification) Result {
	msgs, err := Decode(data)
	if err != nil {
		a.logger.Warn("ingest: dropping payload", "error", err, "size", len(data))
		return Result{Rejected: 1, Errors: []error{err}}
	}
	return a.Apply(msgs, class)
}
