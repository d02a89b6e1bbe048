// Package rewrite normalizes the console's call syntax into its canonical
// positional command form.
//
//	User.show("1234")                      -> show User 1234
//	User.update("1234", "name", "Betty")   -> update User 1234 "name" "Betty"
//	User.update("1234", {'name': 'Betty'}) -> update User 1234 {'name': 'Betty'}
//
// Lines that are not call syntax pass through unchanged. Rewriting never
// fails: any line that cannot be decomposed confidently is returned as is.
//
// The argument blob ends at the first ')' after the first '('. Argument values
// containing parentheses are therefore not supported.
package rewrite

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Verbs are the commands accepted in call syntax.
var Verbs = []string{"all", "count", "show", "destroy", "update"}

// Call is a decomposed call-syntax line.
type Call struct {
	Command string
	Class   string
	ID      string
	Args    string
}

// Canonical joins the fields with single spaces, dropping trailing blanks.
func (c Call) Canonical() string {
	return strings.TrimRight(strings.Join([]string{c.Command, c.Class, c.ID, c.Args}, " "), " ")
}

// ErrNotCall reports a line lacking one of '.', '(' or ')'.
var ErrNotCall = errors.New("not call syntax")

// ParseError reports a call-syntax line that could not be decomposed.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Line rewrites raw into canonical form, or returns it unchanged.
func Line(raw string) string {
	call, err := Parse(raw)
	if err != nil {
		return raw
	}
	return call.Canonical()
}

// Parse decomposes a call-syntax line.
// Returns ErrNotCall for lines that are not call syntax at all and a
// *ParseError for call-syntax lines that cannot be decomposed.
func Parse(raw string) (Call, error) {
	if !strings.Contains(raw, ".") || !strings.Contains(raw, "(") || !strings.Contains(raw, ")") {
		return Call{}, ErrNotCall
	}

	dot := strings.Index(raw, ".")
	open := strings.Index(raw, "(")
	if open < dot {
		return Call{}, &ParseError{Line: raw, Reason: "'(' before '.'"}
	}

	call := Call{
		Class:   raw[:dot],
		Command: raw[dot+1 : open],
	}
	if !slices.Contains(Verbs, call.Command) {
		return Call{}, &ParseError{Line: raw, Reason: fmt.Sprintf("unknown command %q", call.Command)}
	}

	closing := strings.Index(raw[open+1:], ")")
	if closing < 0 {
		return Call{}, &ParseError{Line: raw, Reason: "no ')' after '('"}
	}
	blob := raw[open+1 : open+1+closing]
	if blob == "" {
		return call, nil
	}

	head, tail, _ := strings.Cut(blob, ", ")
	// An id given as "" collapses to no id at all
	call.ID = strings.ReplaceAll(head, `"`, "")

	tail = strings.TrimSpace(tail)
	if tail == "" {
		return call, nil
	}

	if strings.HasPrefix(tail, "{") && strings.HasSuffix(tail, "}") {
		isMap, err := IsMapping(tail)
		if err != nil {
			return Call{}, &ParseError{Line: raw, Reason: "malformed mapping", Err: err}
		}
		if isMap {
			call.Args = tail
			return call, nil
		}
	}

	call.Args = strings.ReplaceAll(tail, ",", "")
	return call, nil
}

// IsMapping reports whether s parses as a key/value mapping literal.
// Both 'single' and "double" quoted keys and values are accepted. Every key
// needs a value: a set literal such as {a, b} is not a mapping.
func IsMapping(s string) (bool, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil {
		return false, err
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) != 1 {
		return false, nil
	}
	m := node.Content[0]
	if m.Kind != yaml.MappingNode {
		return false, nil
	}
	for i := 1; i < len(m.Content); i += 2 {
		if isMissingValue(m.Content[i]) {
			return false, nil
		}
	}
	return true, nil
}

// isMissingValue reports an implicit empty value, as left by a key with no
// ':' or nothing after it. An explicit null or ~ is a value.
func isMissingValue(v *yaml.Node) bool {
	return v.Kind == yaml.ScalarNode && v.Tag == "!!null" && v.Value == ""
}

// ParseMapping decodes a mapping literal into attribute name -> scalar.
// Nested collections are rejected.
func ParseMapping(s string) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	for k, v := range m {
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("value for %q is not a scalar", k)
		}
	}
	return m, nil
}
