package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/rileyhilliard/countertop/internal/metrics"
	"github.com/rileyhilliard/countertop/internal/table"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLineSize bounds one NDJSON event.
const maxLineSize = 1 << 20

// wireEvent is the NDJSON form of an Event:
//
//	{"source":"App","counter":"cpu-usage","fields":{"Mean":42.5,"Name":"cpu-usage"}}
type wireEvent struct {
	Source  string                 `json:"source"`
	Counter string                 `json:"counter"`
	Fields  map[string]interface{} `json:"fields"`
}

// Stream decodes newline-delimited JSON events from a reader.
type Stream struct {
	name string
	r    io.Reader
	opts *options
}

// NewStream returns a provider reading events from r.
func NewStream(name string, r io.Reader, opts ...Option) *Stream {
	return &Stream{name: name, r: r, opts: newOptions(opts)}
}

func (s *Stream) Name() string { return s.name }

// Run decodes until EOF, which ends the stream cleanly. Malformed lines are
// logged and skipped. When ctx is cancelled a reader that is an io.Closer is
// closed and Run waits for the scan to finish. Any other reader is left
// blocked in Read; Run returns at once and the scan delivers nothing more.
func (s *Stream) Run(ctx context.Context, h Handler) error {
	done := make(chan error, 1)
	go func() { done <- s.scan(ctx, h) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if c, ok := s.r.(io.Closer); ok {
			_ = c.Close()
			<-done
		}
		return nil
	}
}

func (s *Stream) scan(ctx context.Context, h Handler) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, err := DecodeEvent([]byte(line))
		if err != nil {
			metrics.RecordEvent(metrics.ResultMalformed)
			s.opts.warn("%s: skipping line %d: %v", s.name, lineNum, err)
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		h(ev)
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrSource,
			fmt.Sprintf("Reading events from %s failed", s.name),
			fmt.Sprintf("Each event must be one JSON object per line, at most %d bytes.", maxLineSize))
	}
	return nil
}

// DecodeEvent parses one NDJSON event. The counter falls back to the Name
// field when omitted.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if w.Source == "" {
		return Event{}, fmt.Errorf("missing \"source\"")
	}

	fields := make(map[string]string, len(w.Fields))
	for k, v := range w.Fields {
		s, ok, err := formatValue(v)
		if err != nil {
			return Event{}, fmt.Errorf("field %q: %w", k, err)
		}
		if ok {
			fields[k] = s
		}
	}

	counter := w.Counter
	if counter == "" {
		counter = fields[table.DefaultNameColumn]
	}
	if counter == "" {
		return Event{}, fmt.Errorf("missing \"counter\" and no %q field", table.DefaultNameColumn)
	}

	return Event{Source: w.Source, Counter: counter, Fields: fields}, nil
}

// formatValue renders a decoded JSON value for display. ok is false for null.
func formatValue(v interface{}) (s string, ok bool, err error) {
	switch val := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return val, true, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true, nil
	case bool:
		return strconv.FormatBool(val), true, nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
}

// EncodeEvent is the inverse of DecodeEvent, producing one line without the
// trailing newline.
func EncodeEvent(ev Event) ([]byte, error) {
	w := wireEvent{Source: ev.Source, Counter: ev.Counter, Fields: make(map[string]interface{}, len(ev.Fields))}
	for k, v := range ev.Fields {
		w.Fields[k] = v
	}
	return json.Marshal(w)
}
