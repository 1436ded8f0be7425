package usecases

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samirrijal/reproj/internal/core/domain"
)

// Registry maps CRS identifiers to projection definitions. A Registry is
// immutable once built; With returns an extended copy.
type Registry struct {
	entries map[string]domain.CRSEntry
	ids     []string
}

// NewRegistry validates entries and builds a registry. Every invalid or
// duplicate entry is reported, not just the first.
func NewRegistry(entries ...domain.CRSEntry) (*Registry, error) {
	return buildRegistry(nil, entries, false)
}

// BuiltinRegistry returns the registry compiled into the binary.
var BuiltinRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(builtinEntries()...)
	if err != nil {
		panic(fmt.Sprintf("builtin CRS table: %v", err))
	}
	return r
})

func buildRegistry(base map[string]domain.CRSEntry, entries []domain.CRSEntry, override bool) (*Registry, error) {
	m := make(map[string]domain.CRSEntry, len(base)+len(entries))
	for id, e := range base {
		m[id] = e
	}

	var result *multierror.Error
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		e.Definition = strings.TrimSpace(e.Definition)
		switch {
		case e.ID == "":
			result = multierror.Append(result, fmt.Errorf("entry %d: empty identifier", i))
			continue
		case e.Definition == "":
			result = multierror.Append(result, fmt.Errorf("%s: empty definition", e.ID))
			continue
		case seen[e.ID]:
			result = multierror.Append(result, fmt.Errorf("%s: duplicate identifier", e.ID))
			continue
		}
		if _, exists := m[e.ID]; exists && !override {
			result = multierror.Append(result, fmt.Errorf("%s: already registered", e.ID))
			continue
		}
		seen[e.ID] = true
		if e.AuthName == "" {
			e.AuthName, e.AuthCode = splitIdentifier(e.ID)
		}
		m[e.ID] = e
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Registry{entries: m, ids: ids}, nil
}

func splitIdentifier(id string) (string, int) {
	auth, code, ok := strings.Cut(id, ":")
	if !ok {
		return "", 0
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return auth, 0
	}
	return auth, n
}

// With returns a new registry holding r's entries plus entries. Entries with
// an identifier already in r replace the existing definition.
func (r *Registry) With(entries ...domain.CRSEntry) (*Registry, error) {
	return buildRegistry(r.entries, entries, true)
}

// Lookup returns the entry for id or an UnknownCRS error.
func (r *Registry) Lookup(id string) (domain.CRSEntry, error) {
	e, ok := r.entries[strings.TrimSpace(id)]
	if !ok {
		return domain.CRSEntry{}, domain.ErrUnknownCRS(id)
	}
	return e, nil
}

// Definition returns the projection definition string for id.
func (r *Registry) Definition(id string) (string, error) {
	e, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	return e.Definition, nil
}

func (r *Registry) IsKnown(id string) bool {
	_, ok := r.entries[strings.TrimSpace(id)]
	return ok
}

// ListKnown returns every identifier, sorted.
func (r *Registry) ListKnown() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Entries returns every entry ordered by identifier.
func (r *Registry) Entries() []domain.CRSEntry {
	out := make([]domain.CRSEntry, len(r.ids))
	for i, id := range r.ids {
		out[i] = r.entries[id]
	}
	return out
}

func (r *Registry) Len() int { return len(r.ids) }
