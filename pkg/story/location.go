package story

import "github.com/jwebster45206/choice-engine/pkg/conditionals"

const (
	// StartID is the location every playthrough begins in.
	StartID = "start"
	// EndID is the sentinel goto target that ends a playthrough.
	EndID = "end"
)

// Location is a node of the story graph: header text and the options offered there.
type Location struct {
	ID            string   `json:"-" yaml:"-" toml:"-"`                                                            // Also the key in the map.
	Header        string   `json:"header" yaml:"header" toml:"header"`                                             // Shown on every visit
	InitialHeader string   `json:"initial_header,omitempty" yaml:"initial_header,omitempty" toml:"initial_header"` // Shown instead of Header on the first visit
	Options       []Option `json:"options" yaml:"options" toml:"options"`                                          // In display order
	Source        string   `json:"-" yaml:"-" toml:"-"`                                                            // File the location was read from
}

// HeaderFor returns the header to show given the number of earlier visits.
func (l *Location) HeaderFor(priorVisits int) string {
	if priorVisits == 0 && l.InitialHeader != "" {
		return l.InitialHeader
	}
	return l.Header
}

// Option is a labeled choice within a location.
type Option struct {
	Label      string `json:"label" yaml:"label" toml:"label"`
	Goto       string `json:"goto,omitempty" yaml:"goto,omitempty" toml:"goto"`                      // Empty means the story ends here
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty" toml:"condition"`       // Visibility expression
	SideEffect string `json:"side_effect,omitempty" yaml:"side_effect,omitempty" toml:"side_effect"` // Statements run when chosen

	condition *conditionals.Expr
	effect    *conditionals.Program
}

// Terminal reports whether choosing the option ends the playthrough.
func (o *Option) Terminal() bool {
	return o.Goto == "" || o.Goto == EndID
}

// CompiledCondition returns the parsed visibility expression, or nil if the option is always visible.
func (o *Option) CompiledCondition() *conditionals.Expr { return o.condition }

// CompiledEffect returns the parsed side effect, or nil if the option has none.
func (o *Option) CompiledEffect() *conditionals.Program { return o.effect }

func (o *Option) compile() error {
	o.condition, o.effect = nil, nil
	if o.Condition != "" {
		expr, err := conditionals.Compile(o.Condition)
		if err != nil {
			return err
		}
		o.condition = expr
	}
	if o.SideEffect != "" {
		prog, err := conditionals.CompileProgram(o.SideEffect)
		if err != nil {
			return err
		}
		o.effect = prog
	}
	return nil
}
