package rounding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultChecklist is the neuro ICU daily checklist new sheets start from.
var DefaultChecklist = []string{
	"Neuro exam documented",
	"ICP/CPP target",
	"Seizure prophylaxis",
	"DVT prophylaxis",
	"GI prophylaxis",
	"HOB >30°",
	"Glucose target 80-180",
	"Normothermia",
	"Sodium target",
	"Blood pressure goal",
	"Lines/EVD reviewed",
	"Family update",
}

// ChecklistItem is one labelled checkbox.
type ChecklistItem struct {
	Label   string
	Checked bool
}

// Checklist is an insertion-ordered set of labelled checkboxes. Labels are
// fixed when the checklist is built; only the checked state can change.
// It serializes as a JSON object whose key order is the checklist order.
type Checklist struct {
	items []ChecklistItem
}

// NewChecklist builds an all-unchecked checklist from labels, keeping their
// order. Blank or duplicate labels are rejected.
func NewChecklist(labels []string) (Checklist, error) {
	items := make([]ChecklistItem, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			return Checklist{}, fmt.Errorf("%w: blank checklist label", ErrInvalidSheet)
		}
		if seen[l] {
			return Checklist{}, fmt.Errorf("%w: duplicate checklist label %q", ErrInvalidSheet, l)
		}
		seen[l] = true
		items = append(items, ChecklistItem{Label: l})
	}
	return Checklist{items: items}, nil
}

// Len returns the number of entries.
func (c Checklist) Len() int { return len(c.items) }

// Items returns a copy of the entries in order.
func (c Checklist) Items() []ChecklistItem {
	out := make([]ChecklistItem, len(c.items))
	copy(out, c.items)
	return out
}

// Labels returns the labels in order.
func (c Checklist) Labels() []string {
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.Label
	}
	return out
}

// Get returns the checked state of label and whether it exists.
func (c Checklist) Get(label string) (checked, ok bool) {
	if i := c.index(label); i >= 0 {
		return c.items[i].Checked, true
	}
	return false, false
}

// Set changes the checked state of an existing label.
func (c *Checklist) Set(label string, checked bool) error {
	i := c.index(label)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrChecklistKey, label)
	}
	c.items[i].Checked = checked
	return nil
}

// Toggle flips an existing label and returns its new state.
func (c *Checklist) Toggle(label string) (bool, error) {
	i := c.index(label)
	if i < 0 {
		return false, fmt.Errorf("%w: %q", ErrChecklistKey, label)
	}
	c.items[i].Checked = !c.items[i].Checked
	return c.items[i].Checked, nil
}

// Clone returns an independent copy.
func (c Checklist) Clone() Checklist {
	if c.items == nil {
		return Checklist{}
	}
	return Checklist{items: c.Items()}
}

func (c Checklist) index(label string) int {
	for i := range c.items {
		if c.items[i].Label == label {
			return i
		}
	}
	return -1
}

func (c Checklist) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range c.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if it.Checked {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of label → bool, keeping document order.
// Anything other than an object of booleans is rejected.
func (c *Checklist) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("checklist: %w", err)
	}
	if tok == nil {
		c.items = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: checklist must be an object", ErrInvalidSheet)
	}

	items := []ChecklistItem{}
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("checklist: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: checklist key must be a string", ErrInvalidSheet)
		}
		var checked bool
		if err := dec.Decode(&checked); err != nil {
			return fmt.Errorf("%w: checklist value for %q must be a boolean", ErrInvalidSheet, label)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate checklist label %q", ErrInvalidSheet, label)
		}
		seen[label] = true
		items = append(items, ChecklistItem{Label: label, Checked: checked})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("checklist: %w", err)
	}
	c.items = items
	return nil
}
