// Package stories provides the story bundled with the binaries.
package stories

import (
	"embed"

	"github.com/jwebster45206/choice-engine/pkg/story"
)

// Root is the directory inside FS that holds the location files.
const Root = "locations"

// storyFS embeds all location files at build time.
//
//go:embed locations
var storyFS embed.FS

// FS returns the embedded filesystem containing the bundled story.
func FS() embed.FS {
	return storyFS
}

// Open loads the story in dir, or the bundled story when dir is empty.
func Open(dir string) (*story.Story, error) {
	if dir == "" {
		return story.Load(FS(), Root)
	}
	return story.LoadDir(dir)
}
