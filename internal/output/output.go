// Package output groups kept lines by source file and writes the destination file.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
)

// Group holds the kept lines of one source file, in original order.
type Group struct {
	FileName string
	Lines    []string
}

// Aggregator collects groups in the order they are added. Lines added twice for the
// same file name are appended to the first group of that name.
type Aggregator struct {
	groups []Group
	index  map[string]int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Add appends g, or merges its lines into an earlier group with the same file name.
func (a *Aggregator) Add(g Group) {
	if i, ok := a.index[g.FileName]; ok {
		a.groups[i].Lines = append(a.groups[i].Lines, g.Lines...)
		return
	}

	a.index[g.FileName] = len(a.groups)
	a.groups = append(a.groups, Group{
		FileName: g.FileName,
		Lines:    append([]string(nil), g.Lines...),
	})
}

// Groups returns the collected groups in insertion order.
func (a *Aggregator) Groups() []Group {
	return a.groups
}

// LineCount returns the number of lines across all groups.
func (a *Aggregator) LineCount() int {
	n := 0
	for _, g := range a.groups {
		n += len(g.Lines)
	}
	return n
}

// Header returns the section header line for a file.
func Header(fileName string) string {
	return "=== " + fileName + " ==="
}

// Render writes every group as a section: the header, the lines verbatim, then a
// blank separator line. Groups without lines still get a section.
func Render(w io.Writer, groups []Group) error {
	bw := bufio.NewWriter(w)

	for _, g := range groups {
		if _, err := fmt.Fprintln(bw, Header(g.FileName)); err != nil {
			return err
		}
		for _, line := range g.Lines {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// DefaultFileMode is the permission of a newly created destination file.
const DefaultFileMode os.FileMode = 0o644

// WriteFile renders groups to path atomically: the content goes to a temporary file
// in the destination directory which is synced and renamed over path. An existing
// destination keeps its permissions; a new one gets DefaultFileMode. On failure the
// temporary file is removed and path is left untouched.
func WriteFile(path string, groups []Group) error {
	mode := DefaultFileMode
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".logc-*.tmp")
	if err != nil {
		return &apperrors.DestinationWriteError{Path: path, Op: "create", Err: err}
	}
	tmpPath := tmpFile.Name()

	if err := Render(tmpFile, groups); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return &apperrors.DestinationWriteError{Path: path, Op: "write", Err: err}
	}

	// CreateTemp always uses 0600.
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return &apperrors.DestinationWriteError{Path: path, Op: "chmod", Err: err}
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return &apperrors.DestinationWriteError{Path: path, Op: "sync", Err: err}
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return &apperrors.DestinationWriteError{Path: path, Op: "close", Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return &apperrors.DestinationWriteError{Path: path, Op: "rename", Err: err}
	}

	return nil
}
