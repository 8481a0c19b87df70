package story

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MergesAllFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"locations/act1.json": {Data: []byte(`{
			"start": {
				"initial_header": "You wake up in the rain.",
				"header": "The street again.",
				"options": [
					{"label": "Go", "goto": "middle"},
					{"label": "Take the badge", "goto": "start", "condition": "not has_badge", "side_effect": "has_badge = 1"}
				]
			}
		}`)},
		"locations/act2/middle.yaml": {Data: []byte(`
middle:
  header: A noodle bar.
  options:
    - label: Finish
      goto: end
`)},
		"locations/act3/roof.toml": {Data: []byte(`
[roof]
initial_header = "Rain on the roof."
header = "The roof, again."

[[roof.options]]
label = "Jump"
goto = "end"
condition = 'times_visited["roof"] > 1'
`)},
		"locations/notes.txt": {Data: []byte("ignored")},
	}

	s, err := Load(fsys, "locations")
	require.NoError(t, err)
	assert.Equal(t, []string{"middle", "roof", "start"}, s.IDs())

	start, err := s.Location("start")
	require.NoError(t, err)
	assert.Equal(t, "start", start.ID)
	assert.Equal(t, "locations/act1.json", start.Source)
	require.Len(t, start.Options, 2)
	assert.Nil(t, start.Options[0].CompiledCondition())
	assert.Nil(t, start.Options[0].CompiledEffect())
	require.NotNil(t, start.Options[1].CompiledCondition())
	assert.Equal(t, "not has_badge", start.Options[1].CompiledCondition().String())
	require.NotNil(t, start.Options[1].CompiledEffect())

	middle, err := s.Location("middle")
	require.NoError(t, err)
	assert.Equal(t, "A noodle bar.", middle.Header)
	assert.True(t, middle.Options[0].Terminal())

	roof, err := s.Location("roof")
	require.NoError(t, err)
	assert.Equal(t, "locations/act3/roof.toml", roof.Source)
	assert.Equal(t, "Rain on the roof.", roof.HeaderFor(0))
	assert.Equal(t, "The roof, again.", roof.HeaderFor(1))
	require.Len(t, roof.Options, 1)
	require.NotNil(t, roof.Options[0].CompiledCondition())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		sentinel error
		source   string
		location string
	}{
		{
			name: "duplicate across files",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{"start": {"header": "A", "options": [{"label": "x", "goto": "end"}]}}`)},
				"b.yaml": {Data: []byte("start:\n  header: B\n  options:\n    - label: y\n")},
			},
			sentinel: ErrDuplicateLocation,
			source:   "b.yaml",
			location: "start",
		},
		{
			name: "duplicate within one JSON file",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{
					"start": {"header": "A", "options": []},
					"start": {"header": "B", "options": []}
				}`)},
			},
			sentinel: ErrDuplicateLocation,
			source:   "a.json",
			location: "start",
		},
		{
			name: "duplicate between JSON and TOML",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{"start": {"header": "A", "options": []}}`)},
				"b.toml": {Data: []byte("[start]\nheader = \"B\"\n")},
			},
			sentinel: ErrDuplicateLocation,
			source:   "b.toml",
			location: "start",
		},
		{
			name: "missing header",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{"start": {"options": [{"label": "x"}]}}`)},
			},
			sentinel: ErrMissingField,
			source:   "a.json",
			location: "start",
		},
		{
			name: "missing label",
			files: fstest.MapFS{
				"a.yml": {Data: []byte("start:\n  header: A\n  options:\n    - goto: end\n")},
			},
			sentinel: ErrMissingField,
			source:   "a.yml",
			location: "start",
		},
		{
			name: "bad condition",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{"start": {"header": "A", "options": [{"label": "x", "condition": "a =="}]}}`)},
			},
			sentinel: ErrBadExpression,
			source:   "a.json",
			location: "start",
		},
		{
			name: "bad side effect",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{"start": {"header": "A", "options": [{"label": "x", "side_effect": "import os"}]}}`)},
			},
			sentinel: ErrBadExpression,
			source:   "a.json",
			location: "start",
		},
		{
			name:     "no story files",
			files:    fstest.MapFS{"readme.md": {Data: []byte("#")}},
			sentinel: ErrNoLocations,
			source:   ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.files, ".")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var dataErr *DataError
			require.True(t, errors.As(err, &dataErr), "expected DataError, got %T", err)
			assert.Equal(t, tt.source, dataErr.Source)
			assert.Equal(t, tt.location, dataErr.Location)
		})
	}
}

func TestLoad_YAMLMultipleDocuments(t *testing.T) {
	fsys := fstest.MapFS{
		"act.yaml": {Data: []byte("start:\n  header: S\n---\nhall:\n  header: H\n---\n")},
	}

	s, err := Load(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"hall", "start"}, s.IDs())

	hall, err := s.Location("hall")
	require.NoError(t, err)
	assert.Equal(t, "act.yaml", hall.Source)

	_, err = Load(fstest.MapFS{
		"act.yaml": {Data: []byte("start:\n  header: S\n---\nstart:\n  header: T\n")},
	}, ".")
	assert.ErrorIs(t, err, ErrDuplicateLocation)

	_, err = Load(fstest.MapFS{
		"act.yaml": {Data: []byte("start:\n  header: S\n---\n- hall\n")},
	}, ".")
	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr), "expected DataError, got %v", err)
	assert.Equal(t, "act.yaml", dataErr.Source)
}

func TestLoad_YAMLAliasesAcrossLocations(t *testing.T) {
	fsys := fstest.MapFS{
		"act.yaml": {Data: []byte(`
start:
  header: S
  options: &opts
    - label: Onward
      goto: hall
      side_effect: steps += 1
hall:
  header: &hallHeader A long hall.
  options: *opts
annex:
  header: *hallHeader
  options:
    - label: Back
      goto: start
`)},
	}

	s, err := Load(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"annex", "hall", "start"}, s.IDs())

	hall, err := s.Location("hall")
	require.NoError(t, err)
	require.Len(t, hall.Options, 1)
	assert.Equal(t, "Onward", hall.Options[0].Label)
	require.NotNil(t, hall.Options[0].CompiledEffect())

	annex, err := s.Location("annex")
	require.NoError(t, err)
	assert.Equal(t, "A long hall.", annex.Header)

	_, err = Load(fstest.MapFS{
		"act.yaml": {Data: []byte("start:\n  header: S\n  options: &opts\n    - label: x\nhall:\n  header: H\n  options: *opts\n  extra: 1\n")},
	}, ".")
	assert.Error(t, err, "unknown fields are still rejected next to aliases")
}

func TestLoad_MalformedRecords(t *testing.T) {
	tests := map[string]string{
		"x.json": `{"start": {"header": "A", "colour": "red"}}`,
		"y.json": `["start"]`,
		"z.yaml": "- start\n",
		"w.yaml": "start:\n  header: A\n  exits: {}\n",
		"v.json": `{"start": `,
		"u.toml": "[start]\nheader = \"A\"\ncolour = \"red\"\n",
		"t.toml": "[start]\nheader = \"A\"\n[start]\nheader = \"B\"\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{name: {Data: []byte(data)}}, ".")
			var dataErr *DataError
			require.True(t, errors.As(err, &dataErr), "expected DataError, got %v", err)
			assert.Equal(t, name, dataErr.Source)
		})
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "nowhere")
	require.Error(t, err)
	var dataErr *DataError
	assert.False(t, errors.As(err, &dataErr))
}

func TestStory_UnknownLocation(t *testing.T) {
	s, err := New(map[string]Location{
		"start": {Header: "A", Options: []Option{{Label: "x", Goto: "end"}}},
	})
	require.NoError(t, err)

	_, err = s.Location("nowhere")
	assert.ErrorIs(t, err, ErrUnknownLocation)
	assert.Contains(t, err.Error(), `"nowhere"`)
}

func TestNew_DoesNotAliasOptions(t *testing.T) {
	opts := []Option{{Label: "x", Goto: "end", Condition: "flag"}}
	s, err := New(map[string]Location{"start": {Header: "A", Options: opts}})
	require.NoError(t, err)

	assert.Nil(t, opts[0].CompiledCondition())
	loc, err := s.Location("start")
	require.NoError(t, err)
	assert.NotNil(t, loc.Options[0].CompiledCondition())
}

func TestLocation_HeaderFor(t *testing.T) {
	withInitial := Location{Header: "again", InitialHeader: "first"}
	plain := Location{Header: "same"}

	assert.Equal(t, "first", withInitial.HeaderFor(0))
	assert.Equal(t, "again", withInitial.HeaderFor(1))
	assert.Equal(t, "same", plain.HeaderFor(0))
	assert.Equal(t, "same", plain.HeaderFor(5))
}

func TestOption_Terminal(t *testing.T) {
	assert.True(t, (&Option{}).Terminal())
	assert.True(t, (&Option{Goto: EndID}).Terminal())
	assert.False(t, (&Option{Goto: "hall"}).Terminal())
}
