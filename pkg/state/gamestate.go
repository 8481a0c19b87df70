package state

import (
	"sort"

	"github.com/google/uuid"
	"github.com/jwebster45206/choice-engine/pkg/conditionals"
)

// GameState is the mutable state of one playthrough: the story variables,
// the per-location visit counts and the player's current location.
type GameState struct {
	ID       uuid.UUID                     // Unique ID per session
	Location string                        // Current location id
	Vars     map[string]conditionals.Value // Written by option side effects
	Visited  map[string]int                // Location id -> times entered
}

// Ensure GameState can be handed to compiled expressions and programs
var _ conditionals.MutableGameState = (*GameState)(nil)

func NewGameState() *GameState {
	return &GameState{
		ID:      uuid.New(),
		Vars:    make(map[string]conditionals.Value),
		Visited: make(map[string]int),
	}
}

// Lookup returns a story variable.
func (gs *GameState) Lookup(name string) (conditionals.Value, bool) {
	v, ok := gs.Vars[name]
	return v, ok
}

// Assign creates or overwrites a story variable.
func (gs *GameState) Assign(name string, v conditionals.Value) {
	if gs.Vars == nil {
		gs.Vars = make(map[string]conditionals.Value)
	}
	gs.Vars[name] = v
}

// Visits returns how many times a location has been entered; zero if never.
func (gs *GameState) Visits(locationID string) int {
	return gs.Visited[locationID]
}

// Visit records an entry into a location and returns the new count.
func (gs *GameState) Visit(locationID string) int {
	if gs.Visited == nil {
		gs.Visited = make(map[string]int)
	}
	gs.Visited[locationID]++
	return gs.Visited[locationID]
}

// VarNames returns the names of all set variables, sorted.
func (gs *GameState) VarNames() []string {
	return sortedKeys(gs.Vars)
}

// VisitedIDs returns the ids of all entered locations, sorted.
func (gs *GameState) VisitedIDs() []string {
	return sortedKeys(gs.Visited)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
