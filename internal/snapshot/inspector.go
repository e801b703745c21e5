package snapshot

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/eyad-hamdy98/CheckBeer/probe"
)

// Inspector serves the filesystem state recorded in a profile, so a
// snapshot run never touches the real filesystem.
type Inspector struct {
	file File
}

// NewInspector returns a path inspector backed by the profile's file block.
func NewInspector(p Profile) *Inspector {
	return &Inspector{file: p.File}
}

var _ probe.PathInspector = (*Inspector)(nil)

// Stat reports the recorded mode and owner for every path.
func (i *Inspector) Stat(path string) (probe.PathStat, error) {
	if i.file.Missing {
		return probe.PathStat{}, fmt.Errorf("stat %s: no such file or directory", path)
	}
	var mode uint32
	fmt.Sscanf(i.file.Mode, "%o", &mode)
	return probe.PathStat{Mode: fs.FileMode(mode), UID: i.file.UID}, nil
}

// Chmod reports whether the recorded state allows permission changes.
func (i *Inspector) Chmod(ctx context.Context, path string, mode fs.FileMode) (bool, error) {
	if i.file.Missing {
		return false, fmt.Errorf("chmod %s: no such file or directory", path)
	}
	return i.file.Mutable, nil
}
