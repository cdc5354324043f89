package server

import (
	"errors"
	"fmt"
	"mime"
	"sync"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name         string
	Version      string
	Instructions string
}

// Option configures a Server.
type Option func(*Server)

// Server is the handler registry. It is populated at startup and only read
// afterwards.
type Server struct {
	mu sync.RWMutex

	info      Info
	tools     *table
	resources *table
	prompts   *table
}

// table is one keyspace, remembering registration order.
type table struct {
	byKey map[string]*registered
	order []*registered
}

func newTable() *table {
	return &table{byKey: make(map[string]*registered)}
}

// New creates an empty registry with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:      info,
		tools:     newTable(),
		resources: newTable(),
		prompts:   newTable(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

func (s *Server) table(k Kind) *table {
	switch k {
	case KindTool:
		return s.tools
	case KindResource:
		return s.resources
	case KindPrompt:
		return s.prompts
	default:
		return nil
	}
}

// Register validates e and adds it to its kind's keyspace. It returns a
// *DuplicateNameError if the key is taken.
func (s *Server) Register(e Entry) error {
	r, err := prepare(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(e.Kind)
	key := e.key()
	if _, exists := t.byKey[key]; exists {
		return &DuplicateNameError{Kind: e.Kind, Name: key}
	}
	t.byKey[key] = r
	t.order = append(t.order, r)
	return nil
}

// RegisterAll registers entries in order, stopping at the first failure.
func (s *Server) RegisterAll(entries ...Entry) error {
	for _, e := range entries {
		if err := s.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// prepare checks an entry and derives its template and published schema.
func prepare(e Entry) (*registered, error) {
	if e.Kind < KindTool || e.Kind > KindPrompt {
		return nil, fmt.Errorf("register: invalid %s", e.Kind)
	}
	if e.Kind == KindResource && e.Name == "" {
		e.Name = e.URITemplate
	}
	if e.key() == "" {
		return nil, fmt.Errorf("register %s: empty name", e.Kind)
	}

	wrap := func(err error) error {
		return fmt.Errorf("register %s %q: %w", e.Kind, e.key(), err)
	}

	if e.Handler == nil {
		return nil, wrap(errors.New("nil handler"))
	}
	if err := e.Params.Validate(); err != nil {
		return nil, wrap(err)
	}
	if !e.Returns.Valid() {
		return nil, wrap(fmt.Errorf("unknown return type %q", string(e.Returns)))
	}

	r := &registered{Entry: e}

	if e.Kind == KindResource {
		tmpl, err := ParseTemplate(e.URITemplate)
		if err != nil {
			return nil, wrap(err)
		}
		for _, name := range tmpl.Params() {
			if _, ok := e.Params.Lookup(name); !ok {
				return nil, wrap(fmt.Errorf("placeholder %q has no matching param", name))
			}
		}
		if r.MimeType == "" {
			r.MimeType = "text/plain"
		}
		if _, _, err := mime.ParseMediaType(r.MimeType); err != nil {
			return nil, wrap(fmt.Errorf("mime type: %w", err))
		}
		r.template = tmpl
	}

	if e.Kind == KindTool {
		js, err := e.Params.JSONSchema()
		if err != nil {
			return nil, wrap(err)
		}
		r.inputSchema = js
	}

	return r, nil
}

// Entries returns the registrations of one kind in registration order.
func (s *Server) Entries(k Kind) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.table(k)
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.order))
	for _, r := range t.order {
		out = append(out, r.Entry)
	}
	return out
}

// Lookup returns the entry registered under key (a name, or a template for
// resources).
func (s *Server) Lookup(k Kind, key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.table(k)
	if t == nil {
		return Entry{}, false
	}
	r, ok := t.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return r.Entry, true
}

// Has reports whether anything is registered under kind k.
func (s *Server) Has(k Kind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.table(k)
	return t != nil && len(t.order) > 0
}

// resolve finds the registration a request targets. Resources match the
// URI against templates in registration order.
func (s *Server) resolve(k Kind, target string) (*registered, map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.table(k)
	if t == nil {
		return nil, nil, fmt.Errorf("dispatch: invalid %s", k)
	}

	if k != KindResource {
		r, ok := t.byKey[target]
		if !ok {
			return nil, nil, &NotFoundError{Kind: k, Target: target}
		}
		return r, nil, nil
	}

	for _, r := range t.order {
		if values, ok := r.template.Match(target); ok {
			return r, values, nil
		}
	}
	return nil, nil, &NotFoundError{Kind: k, Target: target}
}

// inputSchema returns the published input schema of a tool entry.
func (s *Server) inputSchema(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.tools.byKey[name]; ok {
		return r.inputSchema
	}
	return nil
}
