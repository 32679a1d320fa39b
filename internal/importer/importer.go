package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cleared-dev/bank2qif/internal/model"
)

// ErrFormat marks input that does not follow the expected export layout.
var ErrFormat = errors.New("malformed bank export")

// Parser converts a bank export into a History.
type Parser interface {
	Parse(r io.Reader) (model.History, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&MBankParser{})
	return r
}

// ParseFile opens path and parses it with p. The file is closed before returning.
func ParseFile(p Parser, path string) (model.History, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.History{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h, err := p.Parse(f)
	if err != nil {
		return model.History{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return h, nil
}
