package console

import (
	"errors"
	"fmt"

	"github.com/hbnb/console/internal/model"
)

// Diagnostics printed for malformed or unsatisfiable commands.
const (
	MsgClassMissing  = "** class name missing **"
	MsgClassUnknown  = "** class doesn't exist **"
	MsgIDMissing     = "** instance id missing **"
	MsgNotFound      = "** no instance found **"
	MsgAttrMissing   = "** attribute name missing **"
	MsgValueMissing  = "** value missing **"
	unknownSyntaxFmt = "*** Unknown syntax: %s"
	noHelpFmt        = "*** No help on %s"
)

// ValidationError is a command the shell refused. Its message is the
// diagnostic shown to the user; the session continues.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// CoercionError reports a raw attribute value that could not be turned
// into the kind its name requires. The assignment is skipped.
type CoercionError struct {
	Attr string
	Raw  string
	Kind model.Kind
	Err  error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("coerce %s=%q to %s: %v", e.Attr, e.Raw, e.Kind, e.Err)
	}
	return fmt.Sprintf("coerce %s=%q to %s", e.Attr, e.Raw, e.Kind)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// IsCoercionError returns true if err is a CoercionError.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}
