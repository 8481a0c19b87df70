package main

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/jwebster45206/choice-engine/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story-dir>\n", os.Args[0])
		os.Exit(1)
	}

	validator := &StoryValidator{out: os.Stdout}
	if err := validator.validateDir(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Story is valid!")
}

// StoryValidator parse-checks a story directory: every file decodes, every
// record has its required fields and every condition and side effect compiles.
// Whether goto targets exist is left to the game loop.
type StoryValidator struct {
	out      io.Writer
	warnings []string
}

type storyStats struct {
	locations  int
	options    int
	conditions int
	effects    int
}

func (v *StoryValidator) validateDir(dir string) error {
	fmt.Fprintf(v.out, "Validating %s...\n", dir)
	v.warnings = nil

	s, err := story.LoadDir(dir)
	if err != nil {
		return err
	}

	stats := v.inspect(s)
	fmt.Fprintf(v.out, "%d locations, %d options, %d conditions, %d side effects\n",
		stats.locations, stats.options, stats.conditions, stats.effects)
	for _, w := range v.warnings {
		fmt.Fprintln(v.out, w)
	}
	return nil
}

func (v *StoryValidator) inspect(s *story.Story) storyStats {
	var stats storyStats
	for _, id := range s.IDs() {
		loc, _ := s.Location(id)
		stats.locations++
		v.validateIDFormat("location ID", id, loc.Source)

		for _, opt := range loc.Options {
			stats.options++
			if opt.CompiledCondition() != nil {
				stats.conditions++
			}
			if opt.CompiledEffect() != nil {
				stats.effects++
			}
			if !opt.Terminal() {
				v.validateIDFormat("goto target", opt.Goto, loc.Source)
			}
		}
	}
	return stats
}

func (v *StoryValidator) validateIDFormat(fieldName, id, source string) {
	if !isValidID(id) {
		v.addWarning(fmt.Sprintf("%s '%s' in %s should be lowercase snake_case", fieldName, id, source))
	}
}

func (v *StoryValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - warning: "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
