package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Reserved keys of the flat serialized form. They are owned by the Instance
// struct and can never be set as attributes.
const (
	KeyClass     = "__class__"
	KeyID        = "id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
)

// TimeLayout is the persisted timestamp layout (microsecond precision).
const TimeLayout = "2006-01-02T15:04:05.000000"

// Instance is a live business object: a class tag, an immutable id,
// timestamps and an open attribute bag.
type Instance struct {
	Class     string
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Attrs     map[string]Value
}

// New creates an instance of class with the given id, stamped at now.
// Class and id are NFC normalized.
func New(class, id string, now time.Time) *Instance {
	now = now.UTC().Truncate(time.Microsecond)
	return &Instance{
		Class:     Normalize(class),
		ID:        Normalize(id),
		CreatedAt: now,
		UpdatedAt: now,
		Attrs:     map[string]Value{},
	}
}

// IdentityOf builds the store key for a class and id, normalizing both the
// way New does.
func IdentityOf(class, id string) string {
	return Normalize(class) + "." + Normalize(id)
}

// ParseIdentity splits an identity at its first '.'.
func ParseIdentity(identity string) (class, id string, ok bool) {
	return strings.Cut(identity, ".")
}

// Identity returns "<Class>.<ID>".
func (i *Instance) Identity() string {
	return i.Class + "." + i.ID
}

// IsReserved reports whether name is owned by the instance itself.
func IsReserved(name string) bool {
	switch name {
	case KeyClass, KeyID, KeyCreatedAt, KeyUpdatedAt:
		return true
	}
	return false
}

// Set assigns an attribute. Reserved names are refused. The name and any
// String value are NFC normalized.
func (i *Instance) Set(name string, v Value) bool {
	name = Normalize(name)
	if name == "" || IsReserved(name) || v == nil {
		return false
	}
	if s, ok := v.(String); ok {
		v = String(Normalize(string(s)))
	}
	if i.Attrs == nil {
		i.Attrs = map[string]Value{}
	}
	i.Attrs[name] = v
	return true
}

// Get returns an attribute value.
func (i *Instance) Get(name string) (Value, bool) {
	v, ok := i.Attrs[Normalize(name)]
	return v, ok
}

// Touch moves UpdatedAt forward to now.
func (i *Instance) Touch(now time.Time) {
	i.UpdatedAt = now.UTC().Truncate(time.Microsecond)
}

// AttrNames returns attribute names in sorted order.
func (i *Instance) AttrNames() []string {
	names := make([]string, 0, len(i.Attrs))
	for k := range i.Attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Clone returns a deep copy.
func (i *Instance) Clone() *Instance {
	c := *i
	c.Attrs = make(map[string]Value, len(i.Attrs))
	for k, v := range i.Attrs {
		c.Attrs[k] = v
	}
	return &c
}

// String renders the display form used by show and all:
//
//	[User] (1234) {'id': '1234', 'created_at': datetime.datetime(...), ...}
func (i *Instance) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] (%s) {", i.Class, i.ID)
	b.WriteString("'id': ")
	b.WriteString(Quote(i.ID))
	b.WriteString(", 'created_at': ")
	b.WriteString(datetimeRepr(i.CreatedAt))
	b.WriteString(", 'updated_at': ")
	b.WriteString(datetimeRepr(i.UpdatedAt))
	for _, name := range i.AttrNames() {
		b.WriteString(", ")
		b.WriteString(Quote(name))
		b.WriteString(": ")
		b.WriteString(Repr(i.Attrs[name]))
	}
	b.WriteByte('}')
	return b.String()
}

// Repr renders a value the way the display form shows it: strings quoted,
// numbers bare.
func Repr(v Value) string {
	if s, ok := v.(String); ok {
		return Quote(string(s))
	}
	return v.String()
}

// Quote single-quotes s, switching to double quotes when s holds a single
// quote and no double quote.
func Quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func datetimeRepr(t time.Time) string {
	t = t.UTC()
	parts := fmt.Sprintf("%d, %d, %d, %d, %d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
	us := t.Nanosecond() / int(time.Microsecond)
	switch {
	case us != 0:
		parts += fmt.Sprintf(", %d, %d", t.Second(), us)
	case t.Second() != 0:
		parts += fmt.Sprintf(", %d", t.Second())
	}
	return "datetime.datetime(" + parts + ")"
}

// MarshalJSON encodes the flat one-level form with sorted keys.
func (i *Instance) MarshalJSON() ([]byte, error) {
	fields := map[string][]byte{}
	var err error
	if fields[KeyClass], err = marshalString(i.Class); err != nil {
		return nil, err
	}
	if fields[KeyID], err = marshalString(i.ID); err != nil {
		return nil, err
	}
	if fields[KeyCreatedAt], err = marshalString(i.CreatedAt.UTC().Format(TimeLayout)); err != nil {
		return nil, err
	}
	if fields[KeyUpdatedAt], err = marshalString(i.UpdatedAt.UTC().Format(TimeLayout)); err != nil {
		return nil, err
	}
	for name, v := range i.Attrs {
		if IsReserved(name) {
			continue
		}
		b, err := MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("marshal attribute %q: %w", name, err)
		}
		fields[name] = b
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for n, k := range keys {
		if n > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the flat form produced by MarshalJSON.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Instance{Attrs: make(map[string]Value, len(raw))}
	for k, v := range raw {
		switch k {
		case KeyClass:
			if err := json.Unmarshal(v, &out.Class); err != nil {
				return fmt.Errorf("%s: %w", KeyClass, err)
			}
			out.Class = Normalize(out.Class)
		case KeyID:
			if err := json.Unmarshal(v, &out.ID); err != nil {
				return fmt.Errorf("%s: %w", KeyID, err)
			}
			out.ID = Normalize(out.ID)
		case KeyCreatedAt, KeyUpdatedAt:
			t, err := decodeTime(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			if k == KeyCreatedAt {
				out.CreatedAt = t
			} else {
				out.UpdatedAt = t
			}
		default:
			val, err := UnmarshalValue(v)
			if err != nil {
				return fmt.Errorf("attribute %q: %w", k, err)
			}
			name := Normalize(k)
			if _, dup := out.Attrs[name]; dup {
				return fmt.Errorf("attribute %q: appears twice after normalization", name)
			}
			out.Attrs[name] = val
		}
	}

	if out.Class == "" {
		return fmt.Errorf("missing %s", KeyClass)
	}
	if out.ID == "" {
		return fmt.Errorf("missing %s", KeyID)
	}
	*i = out
	return nil
}

func decodeTime(data []byte) (time.Time, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}
