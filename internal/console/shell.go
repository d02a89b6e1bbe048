// Package console implements the hbnb command interpreter: a line-oriented
// dispatcher over the object store.
//
// Every input line is first rewritten from call syntax (User.show("1")) into
// canonical form (show User 1) and then dispatched by its first word.
// Diagnostics go to the same writer as results; the session only ends on
// quit, EOF or a persistence failure.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/hbnb/console/internal/rewrite"
	"github.com/hbnb/console/internal/schema"
	"github.com/hbnb/console/internal/store"
)

// Prompt is printed before each read in interactive sessions and after each
// command otherwise.
const Prompt = "(hbnb) "

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

type handler func(ctx context.Context, arg string) (stop bool, err error)

// Shell reads commands and applies them to a store.
type Shell struct {
	store       *store.Store
	registry    *schema.Registry
	coercer     *Coercer
	out         io.Writer
	ids         IDGenerator
	clock       Clock
	logger      *zap.Logger
	interactive bool
	handlers    map[string]handler
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithIDs sets the id source for created instances.
func WithIDs(g IDGenerator) Option {
	return func(s *Shell) { s.ids = g }
}

// WithClock sets the time source for created_at and updated_at.
func WithClock(c Clock) Option {
	return func(s *Shell) { s.clock = c }
}

// WithInteractive selects prompt behavior: an interactive shell prints the
// prompt before reading, a scripted one prints markers around commands.
func WithInteractive(interactive bool) Option {
	return func(s *Shell) { s.interactive = interactive }
}

// New creates a shell writing results and diagnostics to out.
func New(st *store.Store, registry *schema.Registry, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		store:    st,
		registry: registry,
		coercer:  NewCoercer(registry),
		out:      out,
		ids:      UUIDGenerator{},
		clock:    SystemClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handlers = map[string]handler{
		"quit": func(context.Context, string) (bool, error) { return true, nil },
		"EOF": func(context.Context, string) (bool, error) {
			s.println("")
			return true, nil
		},
		"help":    proceed(func(_ context.Context, arg string) error { return s.doHelp(arg) }),
		"create":  proceed(s.doCreate),
		"show":    proceed(s.doShow),
		"destroy": proceed(s.doDestroy),
		"all":     proceed(s.doAll),
		"count":   proceed(s.doCount),
		"update":  proceed(s.doUpdate),
	}
	return s
}

func proceed(fn func(ctx context.Context, arg string) error) handler {
	return func(ctx context.Context, arg string) (bool, error) {
		return false, fn(ctx, arg)
	}
}

// Run reads lines from in until quit, EOF or end of input.
// End of input behaves like an EOF command.
// Returns an error only when reading or persisting fails.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	if !s.interactive {
		s.println("(hbnb)")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.interactive {
			s.printf("%s", Prompt)
		}

		line := "EOF"
		if scanner.Scan() {
			line = scanner.Text()
		} else if err := scanner.Err(); err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		stop, err := s.Exec(ctx, line)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		if !s.interactive {
			s.printf("%s", Prompt)
		}
	}
}

// Exec rewrites and runs one command line.
// stop reports a terminating command. Diagnostics are printed, not
// returned; err is reserved for failures that end the session.
func (s *Shell) Exec(ctx context.Context, line string) (stop bool, err error) {
	line = strings.TrimSpace(s.precmd(line))
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "?") {
		line = "help " + line[1:]
	}

	name, arg := parseLine(line)
	h, ok := s.handlers[name]
	if !ok {
		s.println(fmt.Sprintf(unknownSyntaxFmt, line))
		return false, nil
	}

	stop, err = h(ctx, arg)
	var ve *ValidationError
	if errors.As(err, &ve) {
		s.println(ve.Message)
		return stop, nil
	}
	if err != nil {
		s.logger.Error("command failed", zap.String("command", name), zap.Error(err))
		return true, fmt.Errorf("%s: %w", name, err)
	}
	return stop, nil
}

// precmd rewrites call syntax into canonical form.
func (s *Shell) precmd(line string) string {
	call, err := rewrite.Parse(line)
	switch {
	case err == nil:
		canonical := call.Canonical()
		s.logger.Debug("rewrote call syntax", zap.String("line", line), zap.String("canonical", canonical))
		return canonical
	case rewrite.IsParseError(err):
		s.logger.Debug("call syntax left as is", zap.Error(err))
	}
	return line
}

// parseLine splits off the leading command word. Command words are made of
// letters, digits and underscores; the rest is the trimmed argument.
func parseLine(line string) (name, arg string) {
	end := strings.IndexFunc(line, func(r rune) bool {
		return !(r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	if end < 0 {
		return line, ""
	}
	return line[:end], strings.TrimSpace(line[end:])
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
