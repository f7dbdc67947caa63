package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/taskdeck/internal/date"
)

// Patch is a partial update. Unset fields are left alone.
type Patch struct {
	Title              Field[string]
	Description        Field[string]
	Priority           Field[Priority]
	Status             Field[Status]
	DueDate            Field[time.Time]
	EstimatedDuration  Field[int]
	ScheduledDate      Field[date.Date]
	ScheduledStartTime Field[date.Clock]
	CompletedAt        Field[time.Time]

	// IfUpdatedAt makes the update conditional on the stored record still
	// carrying this updated_at value.
	IfUpdatedAt *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Description.IsSet() && !p.Priority.IsSet() &&
		!p.Status.IsSet() && !p.DueDate.IsSet() && !p.EstimatedDuration.IsSet() &&
		!p.ScheduledDate.IsSet() && !p.ScheduledStartTime.IsSet() && !p.CompletedAt.IsSet()
}

// Validate rejects patches that would break task invariants.
func (p Patch) Validate() error {
	if p.Title.IsSet() {
		v, _ := p.Title.Value()
		if strings.TrimSpace(v) == "" {
			return ValidateTitle()
		}
	}
	if p.Priority.IsSet() {
		v, _ := p.Priority.Value()
		if !v.Valid() {
			return ValidatePriority(v)
		}
	}
	if p.Status.IsSet() {
		v, _ := p.Status.Value()
		if !v.Valid() {
			return ValidateStatus(v)
		}
	}
	if v, ok := p.EstimatedDuration.Value(); ok && v < 0 {
		return ValidateDuration(v)
	}
	return nil
}

// Apply writes the patch into t. The caller owns UpdatedAt.
func (p Patch) Apply(t *Task) {
	p.Title.applyVal(&t.Title)
	if p.Description.IsSet() {
		t.Description, _ = p.Description.Value()
	}
	p.Priority.applyVal(&t.Priority)
	p.Status.applyVal(&t.Status)
	p.DueDate.applyPtr(&t.DueDate)
	p.EstimatedDuration.applyPtr(&t.EstimatedDuration)
	p.ScheduledDate.applyPtr(&t.ScheduledDate)
	p.ScheduledStartTime.applyPtr(&t.ScheduledStartTime)
	p.CompletedAt.applyPtr(&t.CompletedAt)
}

// Keys returns the column names the patch touches, in declaration order.
func (p Patch) Keys() []string {
	var keys []string
	for _, c := range p.columns() {
		if c.set {
			keys = append(keys, c.name)
		}
	}
	return keys
}

type column struct {
	name string
	set  bool
	val  func() any
}

func (p *Patch) columns() []column {
	return []column{
		{"title", p.Title.IsSet(), func() any { return p.Title.Ptr() }},
		{"description", p.Description.IsSet(), func() any { return p.Description.Ptr() }},
		{"priority", p.Priority.IsSet(), func() any { return p.Priority.Ptr() }},
		{"status", p.Status.IsSet(), func() any { return p.Status.Ptr() }},
		{"due_date", p.DueDate.IsSet(), func() any { return p.DueDate.Ptr() }},
		{"estimated_duration", p.EstimatedDuration.IsSet(), func() any { return p.EstimatedDuration.Ptr() }},
		{"scheduled_date", p.ScheduledDate.IsSet(), func() any { return p.ScheduledDate.Ptr() }},
		{"scheduled_start_time", p.ScheduledStartTime.IsSet(), func() any { return p.ScheduledStartTime.Ptr() }},
		{"completed_at", p.CompletedAt.IsSet(), func() any { return p.CompletedAt.Ptr() }},
	}
}

// MarshalJSON encodes only the fields the patch touches; cleared fields
// become null. IfUpdatedAt is not part of the body.
func (p Patch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	for _, c := range p.columns() {
		if c.set {
			body[c.name] = c.val()
		}
	}
	return json.Marshal(body)
}

// UnmarshalJSON decodes a partial body: absent keys stay unset, null
// clears, anything else sets.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Patch{}
	for key, msg := range raw {
		var err error
		switch key {
		case "title":
			p.Title, err = decodeField[string](msg)
		case "description":
			p.Description, err = decodeField[string](msg)
		case "priority":
			p.Priority, err = decodeField[Priority](msg)
		case "status":
			p.Status, err = decodeField[Status](msg)
		case "due_date":
			p.DueDate, err = decodeField[time.Time](msg)
		case "estimated_duration":
			p.EstimatedDuration, err = decodeField[int](msg)
		case "scheduled_date":
			p.ScheduledDate, err = decodeField[date.Date](msg)
		case "scheduled_start_time":
			p.ScheduledStartTime, err = decodeField[date.Clock](msg)
		case "completed_at":
			p.CompletedAt, err = decodeField[time.Time](msg)
		case "id", "created_at", "updated_at":
			return fmt.Errorf("column %q is read-only", key)
		default:
			return fmt.Errorf("unknown column %q", key)
		}
		if err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
	}
	return nil
}

func decodeField[T any](msg json.RawMessage) (Field[T], error) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return Clear[T](), nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return Field[T]{}, err
	}
	return Set(v), nil
}
