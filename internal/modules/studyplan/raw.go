package studyplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RawTask is one model-produced task. Every field is optional; values the model
// sent as numbers or booleans are read as their string form.
type RawTask struct {
	ID          *string
	Title       *string
	Type        *string
	Hours       *string
	Description *string
	Status      *string
	Notes       *string

	// Malformed marks an entry of "tarefas" that was not a JSON object.
	Malformed bool
	// Source is the entry exactly as received.
	Source json.RawMessage
}

func (t *RawTask) UnmarshalJSON(data []byte) error {
	*t = RawTask{Source: append(json.RawMessage(nil), data...)}
	fields, ok := objectFields(data)
	if !ok {
		t.Malformed = true
		return nil
	}
	t.ID = flexString(fields["id"])
	t.Title = flexString(fields["title"])
	t.Type = flexString(fields["type"])
	t.Hours = flexString(fields["hours"])
	t.Description = flexString(fields["description"])
	t.Status = flexString(fields["status"])
	t.Notes = flexString(fields["notes"])
	return nil
}

// MarshalJSON re-encodes the object as received. A typed field set after
// decoding, such as a defaulted status, is added only where the source had no value.
func (t RawTask) MarshalJSON() ([]byte, error) {
	if t.Malformed {
		if len(t.Source) == 0 {
			return []byte("null"), nil
		}
		return t.Source, nil
	}
	fields, ok := objectFields(t.Source)
	if !ok {
		return json.Marshal(struct {
			ID          *string `json:"id,omitempty"`
			Title       *string `json:"title,omitempty"`
			Type        *string `json:"type,omitempty"`
			Hours       *string `json:"hours,omitempty"`
			Description *string `json:"description,omitempty"`
			Status      *string `json:"status,omitempty"`
			Notes       *string `json:"notes,omitempty"`
		}{t.ID, t.Title, t.Type, t.Hours, t.Description, t.Status, t.Notes})
	}
	typed := map[string]*string{
		"id":          t.ID,
		"title":       t.Title,
		"type":        t.Type,
		"hours":       t.Hours,
		"description": t.Description,
		"status":      t.Status,
		"notes":       t.Notes,
	}
	for key, v := range typed {
		if v == nil || flexString(fields[key]) != nil {
			continue
		}
		b, err := json.Marshal(*v)
		if err != nil {
			return nil, err
		}
		fields[key] = b
	}
	return json.Marshal(fields)
}

// RawWeek is one "plano" block.
type RawWeek struct {
	Week       *int
	Objective  *string
	Topics     []string
	Tasks      []RawTask
	References json.RawMessage
	// Malformed marks a block that was not a JSON object; it carries no tasks.
	Malformed bool
	// Source is the block as received.
	Source json.RawMessage
}

func (w *RawWeek) UnmarshalJSON(data []byte) error {
	*w = RawWeek{Source: append(json.RawMessage(nil), data...)}
	fields, ok := objectFields(data)
	if !ok {
		w.Malformed = true
		return nil
	}
	w.Week = flexInt(fields["semana"])
	w.Objective = flexString(fields["objetivo_semana"])
	w.Topics = flexStrings(fields["topicos"])
	if raw, ok := fields["tarefas"]; ok && isArray(raw) {
		if err := json.Unmarshal(raw, &w.Tasks); err != nil {
			return fmt.Errorf("tarefas: %w", err)
		}
	}
	if raw, ok := fields["referencias"]; ok && !isNull(raw) {
		w.References = append(json.RawMessage(nil), raw...)
	}
	return nil
}

func (w RawWeek) MarshalJSON() ([]byte, error) {
	if w.Malformed && len(w.Source) > 0 {
		return w.Source, nil
	}
	if fields, ok := objectFields(w.Source); ok {
		if isArray(fields["tarefas"]) {
			tasks, err := json.Marshal(w.Tasks)
			if err != nil {
				return nil, err
			}
			fields["tarefas"] = tasks
		}
		return json.Marshal(fields)
	}
	tasks := w.Tasks
	if tasks == nil {
		tasks = []RawTask{}
	}
	return json.Marshal(struct {
		Week       *int            `json:"semana,omitempty"`
		Objective  *string         `json:"objetivo_semana,omitempty"`
		Topics     []string        `json:"topicos,omitempty"`
		Tasks      []RawTask       `json:"tarefas"`
		References json.RawMessage `json:"referencias,omitempty"`
	}{w.Week, w.Objective, w.Topics, tasks, w.References})
}

// RawPlan is the JSON object returned by the completion endpoint. It has no
// invariants until normalized.
type RawPlan struct {
	Topic        *string
	ProfileLabel *string
	Style        *string
	Level        *int
	Objective    *string
	WeeklyHours  *float64
	Weeks        *int
	Plan         []RawWeek

	// Source is the document as received from the model.
	Source json.RawMessage
}

var ErrNotObject = errors.New("plan is not a JSON object")

// ParseRawPlan decodes model output. Anything but a JSON object is rejected.
func ParseRawPlan(data []byte) (*RawPlan, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, errors.New("plan is not valid JSON")
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var p RawPlan
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *RawPlan) UnmarshalJSON(data []byte) error {
	*p = RawPlan{Source: append(json.RawMessage(nil), data...)}
	fields, ok := objectFields(data)
	if !ok {
		return ErrNotObject
	}
	// An empty topic is kept; only a missing one falls back to the default.
	p.Topic = flexScalar(fields["tema"])
	p.ProfileLabel = flexString(fields["perfil_label"])
	p.Style = flexString(fields["estilo"])
	p.Level = flexInt(fields["nivel"])
	p.Objective = flexString(fields["objetivo"])
	p.WeeklyHours = flexFloat(fields["carga_horas_semana"])
	p.Weeks = flexInt(fields["semanas"])
	if raw, ok := fields["plano"]; ok && isArray(raw) {
		if err := json.Unmarshal(raw, &p.Plan); err != nil {
			return fmt.Errorf("plano: %w", err)
		}
	}
	return nil
}

// MarshalJSON re-encodes the document as received, with "plano" rebuilt from
// the decoded weeks so task defaults are kept.
func (p RawPlan) MarshalJSON() ([]byte, error) {
	if fields, ok := objectFields(p.Source); ok {
		if isArray(fields["plano"]) {
			weeks, err := json.Marshal(p.Plan)
			if err != nil {
				return nil, err
			}
			fields["plano"] = weeks
		}
		return json.Marshal(fields)
	}
	weeks := p.Plan
	if weeks == nil {
		weeks = []RawWeek{}
	}
	return json.Marshal(struct {
		Topic        *string   `json:"tema,omitempty"`
		ProfileLabel *string   `json:"perfil_label,omitempty"`
		Style        *string   `json:"estilo,omitempty"`
		Level        *int      `json:"nivel,omitempty"`
		Objective    *string   `json:"objetivo,omitempty"`
		WeeklyHours  *float64  `json:"carga_horas_semana,omitempty"`
		Weeks        *int      `json:"semanas,omitempty"`
		Plan         []RawWeek `json:"plano"`
	}{p.Topic, p.ProfileLabel, p.Style, p.Level, p.Objective, p.WeeklyHours, p.Weeks, weeks})
}

const DefaultTaskStatus = "novo"

// EnsureTaskStatus fills a missing status with "novo" on every well-formed task.
func (p *RawPlan) EnsureTaskStatus() {
	if p == nil {
		return
	}
	for wi := range p.Plan {
		for ti := range p.Plan[wi].Tasks {
			t := &p.Plan[wi].Tasks[ti]
			if t.Malformed || t.Status != nil {
				continue
			}
			s := DefaultTaskStatus
			t.Status = &s
		}
	}
}

func (p *RawPlan) TaskCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, w := range p.Plan {
		for _, t := range w.Tasks {
			if !t.Malformed {
				n++
			}
		}
	}
	return n
}

func objectFields(data []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// flexScalar reads a string, number or boolean as its string form.
func flexScalar(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	return &s
}

// flexString is flexScalar with blank strings read as absent.
func flexString(raw json.RawMessage) *string {
	s := flexScalar(raw)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func flexFloat(raw json.RawMessage) *float64 {
	s := flexString(raw)
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(*s), ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &f
}

func flexInt(raw json.RawMessage) *int {
	f := flexFloat(raw)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func flexStrings(raw json.RawMessage) []string {
	if !isArray(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := flexString(it); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
