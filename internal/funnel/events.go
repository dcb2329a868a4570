package funnel

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/jsonc"

	"github.com/sells-group/growth-cli/internal/apperr"
)

const maxLineBytes = 1 << 20

// Event is one tracked user action. Either event_name or event names it.
type Event struct {
	EventName string `json:"event_name"`
	Event     string `json:"event"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`

	name string
	at   time.Time
	seq  int
}

// Name returns the event name.
func (e Event) Name() string { return e.name }

// ParseEvents decodes a JSON array or JSON Lines event file. Every
// malformed record is reported with its line (JSON Lines) or index
// (array).
func ParseEvents(data []byte) ([]Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, apperr.Validation("invalid event file", apperr.Issue{Message: "file is empty"})
	}

	var (
		events []Event
		issues []apperr.Issue
	)
	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(jsonc.ToJSON(trimmed), &raw); err != nil {
			return nil, apperr.Validation("invalid event file", apperr.Issue{Message: "malformed JSON array: " + err.Error()})
		}
		for i, r := range raw {
			e, err := decodeEvent(r, len(events))
			if err != nil {
				issues = append(issues, apperr.Issue{Path: fmt.Sprintf("[%d]", i), Message: err.Error()})
				continue
			}
			events = append(events, e)
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(trimmed))
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		line := 0
		for sc.Scan() {
			line++
			text := strings.TrimSpace(sc.Text())
			if text == "" {
				continue
			}
			e, err := decodeEvent([]byte(text), len(events))
			if err != nil {
				issues = append(issues, apperr.Issue{Path: fmt.Sprintf("line %d", line), Message: err.Error()})
				continue
			}
			events = append(events, e)
		}
		if err := sc.Err(); err != nil {
			issues = append(issues, apperr.Issue{Path: fmt.Sprintf("line %d", line+1), Message: err.Error()})
		}
	}

	if len(issues) > 0 {
		return nil, apperr.Validation("invalid event file", issues...)
	}
	return events, nil
}

func decodeEvent(data []byte, seq int) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, eris.Wrap(err, "malformed event")
	}
	e.name = e.EventName
	if e.name == "" {
		e.name = e.Event
	}
	if e.name == "" {
		return Event{}, eris.New("event_name is required")
	}
	if e.UserID == "" {
		return Event{}, eris.New("user_id is required")
	}
	if e.Timestamp != "" {
		at, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		if err != nil {
			return Event{}, eris.Errorf("timestamp %q is not RFC 3339", e.Timestamp)
		}
		e.at = at.UTC()
	}
	e.seq = seq
	return e, nil
}
