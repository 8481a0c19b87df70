package story

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateLocation = errors.New("duplicate location")
	ErrMissingField      = errors.New("missing required field")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrNoLocations       = errors.New("no locations found")
	ErrBadExpression     = errors.New("invalid expression")
)

// DataError reports malformed or inconsistent story data. It is fatal to a playthrough.
type DataError struct {
	Source   string // file the record came from, if known
	Location string // location id, if known
	Err      error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString("story data error")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Location != "" {
		fmt.Fprintf(&b, " at location %q", e.Location)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *DataError) Unwrap() error { return e.Err }

// Story holds every location of a loaded story, keyed by id.
type Story struct {
	locations map[string]*Location
}

// New validates and compiles an in-memory set of locations. The map keys are
// the location ids.
func New(locations map[string]Location) (*Story, error) {
	b := newBuilder()
	ids := make([]string, 0, len(locations))
	for id := range locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := b.add(id, locations[id]); err != nil {
			return nil, err
		}
	}
	return b.build()
}

// Location resolves a location id.
func (s *Story) Location(id string) (*Location, error) {
	loc, ok := s.locations[id]
	if !ok {
		return nil, &DataError{Location: id, Err: ErrUnknownLocation}
	}
	return loc, nil
}

// Len returns the number of locations.
func (s *Story) Len() int { return len(s.locations) }

// IDs returns all location ids in sorted order.
func (s *Story) IDs() []string {
	ids := make([]string, 0, len(s.locations))
	for id := range s.locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type builder struct {
	locations map[string]*Location
}

func newBuilder() *builder {
	return &builder{locations: make(map[string]*Location)}
}

func (b *builder) add(id string, loc Location) error {
	if strings.TrimSpace(id) == "" {
		return &DataError{Source: loc.Source, Err: fmt.Errorf("%w: location id", ErrMissingField)}
	}
	if prev, exists := b.locations[id]; exists {
		return &DataError{
			Source:   loc.Source,
			Location: id,
			Err:      fmt.Errorf("%w: already defined in %s", ErrDuplicateLocation, sourceName(prev.Source)),
		}
	}
	if loc.Header == "" {
		return &DataError{Source: loc.Source, Location: id, Err: fmt.Errorf("%w: header", ErrMissingField)}
	}

	loc.ID = id
	// Compiled expressions live on a private copy of the options.
	loc.Options = append([]Option(nil), loc.Options...)
	for i := range loc.Options {
		opt := &loc.Options[i]
		if opt.Label == "" {
			return &DataError{Source: loc.Source, Location: id, Err: fmt.Errorf("%w: label of option %d", ErrMissingField, i+1)}
		}
		if err := opt.compile(); err != nil {
			return &DataError{Source: loc.Source, Location: id, Err: fmt.Errorf("%w in option %q: %w", ErrBadExpression, opt.Label, err)}
		}
	}

	b.locations[id] = &loc
	return nil
}

func (b *builder) build() (*Story, error) {
	if len(b.locations) == 0 {
		return nil, &DataError{Err: ErrNoLocations}
	}
	return &Story{locations: b.locations}, nil
}

func sourceName(src string) string {
	if src == "" {
		return "<memory>"
	}
	return src
}
