package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Draft carries the fields of a create request.
type Draft struct {
	Title       Optional[string] `json:"title,omitzero"`
	Description Optional[string] `json:"description,omitzero"`
	Priority    Optional[string] `json:"priority,omitzero"`
	Category    Optional[string] `json:"category,omitzero"`
	DueDate     Optional[string] `json:"due_date,omitzero"`
}

// Patch carries a partial update. Only fields that were present in the
// payload are set. HasData is false when the payload was empty or absent.
type Patch struct {
	HasData     bool             `json:"has_data"`
	Title       Optional[string] `json:"title,omitzero"`
	Description Optional[string] `json:"description,omitzero"`
	Completed   Optional[bool]   `json:"completed,omitzero"`
	Priority    Optional[string] `json:"priority,omitzero"`
	Category    Optional[string] `json:"category,omitzero"`
	DueDate     Optional[string] `json:"due_date,omitzero"`
}

// Changed returns the JSON names of the fields the patch touches.
func (p Patch) Changed() []string {
	var fields []string
	if p.Title.Set {
		fields = append(fields, "title")
	}
	if p.Description.Set {
		fields = append(fields, "description")
	}
	if p.Completed.Set {
		fields = append(fields, "completed")
	}
	if p.Priority.Set {
		fields = append(fields, "priority")
	}
	if p.Category.Set {
		fields = append(fields, "category")
	}
	if p.DueDate.Set {
		fields = append(fields, "due_date")
	}
	return fields
}

// DecodeDraft decodes a create request body.
func DecodeDraft(body []byte) (Draft, error) {
	var d Draft
	fields, err := decodeObject(body)
	if err != nil {
		return d, err
	}
	if d.Title, err = stringField(fields, "title", "Title must be a string"); err != nil {
		return d, err
	}
	if d.Description, err = stringField(fields, "description", "Description must be a string"); err != nil {
		return d, err
	}
	if d.Priority, err = stringField(fields, "priority", ""); err != nil {
		return d, err
	}
	if d.Category, err = stringField(fields, "category", "Category must be a string"); err != nil {
		return d, err
	}
	if d.DueDate, err = stringField(fields, "due_date", MsgInvalidDueDate); err != nil {
		return d, err
	}
	return d, nil
}

// DecodePatch decodes an update request body, keeping track of which keys were sent.
func DecodePatch(body []byte) (Patch, error) {
	var p Patch
	fields, err := decodeObject(body)
	if err != nil {
		return p, err
	}
	p.HasData = len(fields) > 0
	if p.Title, err = stringField(fields, "title", "Title must be a string"); err != nil {
		return p, err
	}
	if p.Description, err = stringField(fields, "description", "Description must be a string"); err != nil {
		return p, err
	}
	if raw, ok := fields["completed"]; ok {
		p.Completed = Some(Truthy(raw))
	}
	if p.Priority, err = stringField(fields, "priority", ""); err != nil {
		return p, err
	}
	if p.Category, err = stringField(fields, "category", "Category must be a string"); err != nil {
		return p, err
	}
	if p.DueDate, err = stringField(fields, "due_date", MsgInvalidDueDate); err != nil {
		return p, err
	}
	return p, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &ValidationError{Message: MsgInvalidPayload}
	}
	return fields, nil
}

// stringField reads a string-typed key. Falsy non-string values read as "".
// An empty typeErr means any non-string value passes through as its raw
// JSON text, leaving range validation to the caller.
func stringField(fields map[string]json.RawMessage, key, typeErr string) (Optional[string], error) {
	raw, ok := fields[key]
	if !ok {
		return Optional[string]{}, nil
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return Null[string](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Some(s), nil
	}
	if !Truthy(raw) {
		return Some(""), nil
	}
	if typeErr == "" {
		return Some(string(raw)), nil
	}
	return Optional[string]{}, &ValidationError{Message: typeErr}
}

// Truthy applies JSON truthiness: null, false, 0, "", [] and {} are false.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n':
		return false
	case 't':
		return true
	case 'f':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s != ""
	case '[':
		var a []json.RawMessage
		if err := json.Unmarshal(raw, &a); err != nil {
			return false
		}
		return len(a) > 0
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return false
		}
		return len(m) > 0
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return false
		}
		return f != 0
	}
}

// String renders a Patch for log lines.
func (p Patch) String() string {
	return fmt.Sprintf("Patch%v", p.Changed())
}
