package story

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadDir loads every story file below dir on the local filesystem.
func LoadDir(dir string) (*Story, error) {
	return Load(os.DirFS(dir), ".")
}

// Load walks root in fsys and merges every .json, .yaml, .yml and .toml file into one
// story. Each file maps location ids to location records. A location id defined
// twice, in one file or across files, is a DataError.
func Load(fsys fs.FS, root string) (*Story, error) {
	b := newBuilder()
	files := 0

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		var decode func([]byte, string, func(string, Location) error) error
		switch strings.ToLower(path.Ext(p)) {
		case ".json":
			decode = decodeJSON
		case ".yaml", ".yml":
			decode = decodeYAML
		case ".toml":
			decode = decodeTOML
		default:
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read story file %s: %w", p, err)
		}
		files++
		slog.Debug("Loading story file", "path", p, "bytes", len(data))

		return decode(data, p, func(id string, loc Location) error {
			loc.Source = p
			return b.add(id, loc)
		})
	})
	if err != nil {
		var dataErr *DataError
		if errors.As(err, &dataErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load story from %s: %w", root, err)
	}

	if files == 0 {
		return nil, &DataError{Source: root, Err: fmt.Errorf("%w: no story files", ErrNoLocations)}
	}
	s, err := b.build()
	if err != nil {
		return nil, err
	}
	slog.Debug("Story loaded", "root", root, "files", files, "locations", s.Len())
	return s, nil
}

// decodeJSON streams the top-level object so that repeated keys inside one
// file are reported instead of silently overwritten.
func decodeJSON(data []byte, source string, add func(string, Location) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	tok, err := dec.Token()
	if err != nil {
		return &DataError{Source: source, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &DataError{Source: source, Err: errors.New("top level must be an object of locations")}
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return &DataError{Source: source, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
		id, _ := tok.(string)

		var loc Location
		if err := dec.Decode(&loc); err != nil {
			return &DataError{Source: source, Location: id, Err: fmt.Errorf("failed to decode location: %w", err)}
		}
		if err := add(id, loc); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return &DataError{Source: source, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return nil
}

// decodeYAML reads every document in the file. Each document maps location
// ids to records.
func decodeYAML(data []byte, source string, add func(string, Location) error) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &DataError{Source: source, Err: fmt.Errorf("invalid YAML: %w", err)}
		}
		if err := decodeYAMLDocument(&doc, source, add); err != nil {
			return err
		}
	}
}

func decodeYAMLDocument(doc *yaml.Node, source string, add func(string, Location) error) error {
	if len(doc.Content) == 0 {
		return nil
	}
	top := doc.Content[0]
	if top.Kind == yaml.ScalarNode && top.ShortTag() == "!!null" {
		return nil
	}
	if top.Kind != yaml.MappingNode {
		return &DataError{Source: source, Err: errors.New("top level must be a mapping of locations")}
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		id := top.Content[i].Value

		var loc Location
		if err := decodeYAMLStrict(top.Content[i+1], &loc); err != nil {
			return &DataError{Source: source, Location: id, Err: fmt.Errorf("failed to decode location: %w", err)}
		}
		if err := add(id, loc); err != nil {
			return err
		}
	}
	return nil
}

// decodeYAMLStrict re-encodes a node so that KnownFields applies to it;
// yaml.Node.Decode does not reject unknown fields. Aliases are expanded
// first because their anchors may sit in another location.
func decodeYAMLStrict(n *yaml.Node, out any) error {
	resolved, err := resolveAliases(n, 0)
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(resolved)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(out)
}

const maxAliasDepth = 64

// resolveAliases returns a copy of n with every alias replaced by the node it
// points at and every anchor dropped.
func resolveAliases(n *yaml.Node, depth int) (*yaml.Node, error) {
	if depth > maxAliasDepth {
		return nil, errors.New("aliases nested too deeply")
	}
	if n.Kind == yaml.AliasNode {
		if n.Alias == nil {
			return nil, fmt.Errorf("unknown anchor %q", n.Value)
		}
		return resolveAliases(n.Alias, depth+1)
	}

	out := *n
	out.Anchor = ""
	out.Content = nil
	for _, child := range n.Content {
		c, err := resolveAliases(child, depth+1)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, c)
	}
	return &out, nil
}

// decodeTOML reads one table per location. TOML itself rejects a table
// defined twice in the same file.
func decodeTOML(data []byte, source string, add func(string, Location) error) error {
	var locations map[string]Location
	md, err := toml.Decode(string(data), &locations)
	if err != nil {
		return &DataError{Source: source, Err: fmt.Errorf("invalid TOML: %w", err)}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		key := undecoded[0]
		return &DataError{Source: source, Location: key[0], Err: fmt.Errorf("unknown field %q", key.String())}
	}

	ids := make([]string, 0, len(locations))
	for id := range locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := add(id, locations[id]); err != nil {
			return err
		}
	}
	return nil
}
