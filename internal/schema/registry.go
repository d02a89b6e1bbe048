package schema

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/hbnb/console/internal/model"
)

//go:embed classes.cue
var classesCUE []byte

// Registry is the closed set of classes the console accepts, plus the typed
// attribute allow-list used by create and update.
type Registry struct {
	classes map[string]struct{}
	typed   map[string]model.Kind
}

// Load compiles the embedded class document.
func Load() (*Registry, error) {
	return LoadBytes("classes.cue", classesCUE)
}

// LoadFile compiles a class document from disk.
func LoadFile(path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return LoadBytes(path, src)
}

// LoadBytes compiles a class document. filename is only used in error positions.
//
// The document must have a top-level "classes" struct; each class may carry an
// "attributes" struct mapping attribute name to "string", "int" or "float".
func LoadBytes(filename string, src []byte) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	classesVal := v.LookupPath(cue.ParsePath("classes"))
	if !classesVal.Exists() {
		return nil, &CompileError{
			Field:   "classes",
			Message: "classes is required",
			Pos:     v.Pos(),
		}
	}

	r := &Registry{
		classes: map[string]struct{}{},
		typed:   map[string]model.Kind{},
	}

	iter, err := classesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		className := model.Normalize(iter.Label())
		attrs, err := parseAttributes(iter.Value())
		if err != nil {
			return nil, err
		}
		r.classes[className] = struct{}{}

		for name, kind := range attrs {
			if kind == model.KindString {
				continue
			}
			if prev, ok := r.typed[name]; ok && prev != kind {
				return nil, &CompileError{
					Field:   fmt.Sprintf("classes.%s.attributes.%s", className, name),
					Message: fmt.Sprintf("declared %s here but %s elsewhere", kind, prev),
					Pos:     iter.Value().Pos(),
				}
			}
			r.typed[name] = kind
		}
	}

	if len(r.classes) == 0 {
		return nil, &CompileError{
			Field:   "classes",
			Message: "at least one class is required",
			Pos:     classesVal.Pos(),
		}
	}

	return r, nil
}

// parseAttributes reads the optional attributes struct of one class.
func parseAttributes(v cue.Value) (map[string]model.Kind, error) {
	attrs := map[string]model.Kind{}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return attrs, nil
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := model.Normalize(iter.Label())
		kindStr, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kind := model.Kind(kindStr)
		switch kind {
		case model.KindString, model.KindInt, model.KindFloat:
		default:
			return nil, &CompileError{
				Field:   name,
				Message: fmt.Sprintf("unknown attribute kind %q", kindStr),
				Pos:     iter.Value().Pos(),
			}
		}
		attrs[name] = kind
	}
	return attrs, nil
}

// Has reports whether class is a known class name.
func (r *Registry) Has(class string) bool {
	_, ok := r.classes[model.Normalize(class)]
	return ok
}

// Classes returns the class names in sorted order.
func (r *Registry) Classes() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Typed returns the declared non-string kind of an attribute name.
// Only int and float attributes are on the allow-list.
func (r *Registry) Typed(attr string) (model.Kind, bool) {
	kind, ok := r.typed[model.Normalize(attr)]
	return kind, ok
}

// CompileError is a class document error with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
