package console

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/hbnb/console/internal/model"
	"github.com/hbnb/console/internal/rewrite"
	"github.com/hbnb/console/internal/store"
)

// doCreate handles "create <class> [name=value ...]".
func (s *Shell) doCreate(ctx context.Context, arg string) error {
	if arg == "" {
		return invalid(MsgClassMissing)
	}
	tokens := s.tokenize(arg)
	if len(tokens) == 0 {
		return invalid(MsgClassMissing)
	}
	class := tokens[0]
	if !s.registry.Has(class) {
		return invalid(MsgClassUnknown)
	}

	inst := model.New(class, s.ids.Generate(), s.clock.Now())
	for _, param := range tokens[1:] {
		if strings.Count(param, "=") != 1 {
			s.logger.Debug("skipping create parameter", zap.String("param", param))
			continue
		}
		name, raw, _ := strings.Cut(param, "=")
		v, err := s.coercer.Create(name, raw)
		if err != nil {
			s.logger.Debug("skipping create parameter", zap.String("param", param), zap.Error(err))
			continue
		}
		if !inst.Set(name, v) {
			s.logger.Debug("refusing reserved attribute", zap.String("attr", name))
		}
	}

	s.store.Insert(inst)
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	s.println(inst.ID)
	return nil
}

// doShow handles "show <class> <id>".
func (s *Shell) doShow(ctx context.Context, arg string) error {
	inst, err := s.lookup(arg)
	if err != nil {
		return err
	}
	s.println(inst.String())
	return nil
}

// doDestroy handles "destroy <class> <id>".
func (s *Shell) doDestroy(ctx context.Context, arg string) error {
	inst, err := s.lookup(arg)
	if err != nil {
		return err
	}
	if err := s.store.Delete(inst.Identity()); err != nil {
		return err
	}
	return s.store.Save(ctx)
}

// doAll handles "all [<class>]".
func (s *Shell) doAll(ctx context.Context, arg string) error {
	objects := s.store.All()
	if class := firstField(arg); class != "" {
		if !s.registry.Has(class) {
			return invalid(MsgClassUnknown)
		}
		objects = s.store.AllOfClass(class)
	}

	snap := store.Snapshot(objects)
	quoted := make([]string, 0, len(snap))
	for _, identity := range snap.Identities() {
		quoted = append(quoted, model.Quote(snap[identity].String()))
	}
	s.println("[" + strings.Join(quoted, ", ") + "]")
	return nil
}

// doCount handles "count <class>".
func (s *Shell) doCount(ctx context.Context, arg string) error {
	class := firstField(arg)
	if class == "" {
		return invalid(MsgClassMissing)
	}
	if !s.registry.Has(class) {
		return invalid(MsgClassUnknown)
	}
	s.printf("%d\n", s.store.Count(class))
	return nil
}

// assignment is one coerced attribute write of an update.
type assignment struct {
	name  string
	value model.Value
}

// doUpdate handles
//
//	update <class> <id> <attr> <value> [<attr> <value> ...]
//	update <class> <id> {'<attr>': <value>, ...}
func (s *Shell) doUpdate(ctx context.Context, arg string) error {
	inst, err := s.lookup(arg)
	if err != nil {
		return err
	}
	_, payload := splitFields(arg, 2)
	if payload == "" {
		return invalid(MsgAttrMissing)
	}

	var writes []assignment
	if isMappingPayload(payload) {
		writes, err = s.mappingUpdate(payload)
	} else {
		writes, err = s.pairUpdate(payload)
	}
	if err != nil {
		return err
	}

	changed := false
	for _, w := range writes {
		if !inst.Set(w.name, w.value) {
			s.logger.Debug("refusing reserved attribute", zap.String("attr", w.name))
			continue
		}
		changed = true
	}
	if !changed {
		s.logger.Debug("update assigned nothing", zap.String("identity", inst.Identity()))
		return nil
	}
	inst.Touch(s.clock.Now())
	return s.store.Save(ctx)
}

func (s *Shell) pairUpdate(payload string) ([]assignment, error) {
	tokens := s.tokenize(payload)
	if len(tokens) == 0 {
		return nil, invalid(MsgAttrMissing)
	}

	var writes []assignment
	for i := 0; i < len(tokens); i += 2 {
		name := strings.ReplaceAll(tokens[i], `"`, "")
		if name == "" {
			return nil, invalid(MsgAttrMissing)
		}
		if i+1 >= len(tokens) || tokens[i+1] == "" {
			return nil, invalid(MsgValueMissing)
		}
		v, err := s.coercer.CoerceUpdate(name, tokens[i+1])
		if err != nil {
			s.logger.Debug("skipping update", zap.String("attr", name), zap.Error(err))
			continue
		}
		writes = append(writes, assignment{name: name, value: v})
	}
	return writes, nil
}

func (s *Shell) mappingUpdate(payload string) ([]assignment, error) {
	m, err := rewrite.ParseMapping(payload)
	if err != nil {
		s.logger.Debug("rejecting update mapping", zap.String("payload", payload), zap.Error(err))
		return nil, invalid(MsgValueMissing)
	}
	if len(m) == 0 {
		return nil, invalid(MsgAttrMissing)
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	writes := make([]assignment, 0, len(m))
	for _, name := range names {
		v, err := s.coercer.CoerceMapped(name, m[name])
		if err != nil {
			s.logger.Debug("skipping update", zap.String("attr", name), zap.Error(err))
			continue
		}
		writes = append(writes, assignment{name: name, value: v})
	}
	return writes, nil
}

func isMappingPayload(payload string) bool {
	if !strings.HasPrefix(payload, "{") || !strings.HasSuffix(payload, "}") {
		return false
	}
	ok, err := rewrite.IsMapping(payload)
	return ok && err == nil
}

// lookup validates "<class> <id> ..." and fetches the instance.
func (s *Shell) lookup(arg string) (*model.Instance, error) {
	fields, _ := splitFields(arg, 2)
	if len(fields) == 0 {
		return nil, invalid(MsgClassMissing)
	}
	if !s.registry.Has(fields[0]) {
		return nil, invalid(MsgClassUnknown)
	}
	if len(fields) < 2 {
		return nil, invalid(MsgIDMissing)
	}
	inst, err := s.store.Get(model.IdentityOf(fields[0], fields[1]))
	if store.IsNotFound(err) {
		return nil, invalid(MsgNotFound)
	}
	return inst, err
}

// tokenize splits with shell quoting rules, falling back to whitespace when
// the quoting is unbalanced.
func (s *Shell) tokenize(arg string) []string {
	tokens, err := shlex.Split(arg)
	if err != nil {
		s.logger.Debug("falling back to whitespace split", zap.String("arg", arg), zap.Error(err))
		return strings.Fields(arg)
	}
	return tokens
}

// splitFields returns up to n leading whitespace-separated fields and the
// trimmed remainder.
func splitFields(s string, n int) ([]string, string) {
	var fields []string
	rest := strings.TrimSpace(s)
	for len(fields) < n && rest != "" {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return append(fields, rest), ""
		}
		fields = append(fields, rest[:end])
		rest = strings.TrimSpace(rest[end:])
	}
	return fields, rest
}

func firstField(s string) string {
	fields, _ := splitFields(s, 1)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
