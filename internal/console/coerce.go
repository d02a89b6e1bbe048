package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hbnb/console/internal/model"
	"github.com/hbnb/console/internal/schema"
)

var errNotFinite = errors.New("not a finite number")

// Coercer turns raw command-line text into attribute values.
//
// Names on the registry's typed allow-list always get their declared kind.
// Everything else is either inferred from its shape (create) or kept as
// text (update).
type Coercer struct {
	registry *schema.Registry
}

// NewCoercer creates a coercer backed by the registry's allow-list.
func NewCoercer(registry *schema.Registry) *Coercer {
	return &Coercer{registry: registry}
}

// CoerceTyped parses raw as the kind declared for name.
// ok is false when name is not on the allow-list.
func (c *Coercer) CoerceTyped(name, raw string) (v model.Value, ok bool, err error) {
	kind, typed := c.registry.Typed(name)
	if !typed {
		return nil, false, nil
	}
	v, err = parseTyped(kind, strings.TrimSpace(raw))
	if err != nil {
		return nil, true, &CoercionError{Attr: name, Raw: raw, Kind: kind, Err: err}
	}
	return v, true, nil
}

// Create coerces a key=value parameter of the create command.
func (c *Coercer) Create(name, raw string) (model.Value, error) {
	if v, ok, err := c.CoerceTyped(name, raw); ok {
		return v, err
	}
	v, err := InferCreate(raw)
	if err != nil {
		var ce *CoercionError
		if errors.As(err, &ce) {
			ce.Attr = name
		}
		return nil, err
	}
	return v, nil
}

// CoerceUpdate coerces one attribute/value pair of the update command.
func (c *Coercer) CoerceUpdate(name, raw string) (model.Value, error) {
	if v, ok, err := c.CoerceTyped(name, raw); ok {
		return v, err
	}
	return model.String(cleanText(raw)), nil
}

// CoerceMapped coerces a value decoded from an update mapping payload.
// Allow-listed names are converted to their kind; other scalars keep the
// type the literal gave them.
func (c *Coercer) CoerceMapped(name string, raw any) (model.Value, error) {
	v, err := model.FromAny(raw)
	if err != nil {
		return nil, &CoercionError{Attr: name, Raw: fmt.Sprint(raw), Kind: model.KindString, Err: err}
	}
	kind, typed := c.registry.Typed(name)
	if !typed || model.KindOf(v) == kind {
		return v, nil
	}

	switch val := v.(type) {
	case model.String:
		out, _, err := c.CoerceTyped(name, string(val))
		return out, err
	case model.Int:
		return model.Float(float64(val)), nil
	case model.Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
			return nil, &CoercionError{Attr: name, Raw: val.String(), Kind: kind, Err: errNotFinite}
		}
		return model.Int(int64(f)), nil
	}
	return v, nil
}

// InferCreate infers a value from its shape:
//
//	contains '.'           -> float
//	digits, optional '-'   -> int
//	anything else          -> text, '"' removed and '_' read as a space
func InferCreate(raw string) (model.Value, error) {
	switch {
	case strings.Contains(raw, "."):
		v, err := parseTyped(model.KindFloat, raw)
		if err != nil {
			return nil, &CoercionError{Raw: raw, Kind: model.KindFloat, Err: err}
		}
		return v, nil
	case isInteger(raw):
		v, err := parseTyped(model.KindInt, raw)
		if err != nil {
			return nil, &CoercionError{Raw: raw, Kind: model.KindInt, Err: err}
		}
		return v, nil
	}
	return model.String(cleanText(raw)), nil
}

func parseTyped(kind model.Kind, raw string) (model.Value, error) {
	if kind == model.KindFloat && strings.ContainsAny(raw, "xX") {
		return nil, strconv.ErrSyntax
	}
	v, err := model.ParseKind(kind, raw)
	if err != nil {
		return nil, err
	}
	if f, ok := v.(model.Float); ok && (math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)) {
		return nil, errNotFinite
	}
	return v, nil
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cleanText(raw string) string {
	return strings.ReplaceAll(strings.ReplaceAll(raw, `"`, ""), "_", " ")
}
