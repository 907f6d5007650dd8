// Package archive reads device diagnostic bundles (.tgz, .tar.gz or plain .tar) and
// extracts the log files they carry.
package archive

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultLogRoot is the directory inside a bundle that holds the device logs.
const DefaultLogRoot = "var/log"

var (
	// ErrMemberNotFound is returned when an exact member name is not in the archive.
	ErrMemberNotFound = errors.New("member not found")
	// ErrNoMatch is returned when no member matches the selection patterns.
	ErrNoMatch = errors.New("no member matches the selection")
)

// Options controls how an archive is read.
type Options struct {
	// LogRoot is the directory whose files are exposed as members. Names are made
	// relative to it; files outside it are ignored. "." exposes the whole archive.
	LogRoot string
	// FallbackEncoding decodes members that are not valid UTF-8. Defaults to Windows-1252.
	FallbackEncoding encoding.Encoding
	// Logger receives warnings about skipped members. Defaults to slog.Default().
	Logger *slog.Logger
}

// Member describes one log file in the archive.
type Member struct {
	Name    string // Relative to the log root
	Size    int64
	ModTime time.Time

	entry string // Full name inside the tar stream
}

// Archive is an opened bundle. Close removes files extracted from it.
type Archive struct {
	path    string
	opts    Options
	members []Member
	workDir string
}

// Open reads the member index of the archive at path.
func Open(path string, opts Options) (*Archive, error) {
	if opts.LogRoot == "" {
		opts.LogRoot = DefaultLogRoot
	}
	opts.LogRoot = strings.Trim(cleanEntry(opts.LogRoot), "/")
	if opts.FallbackEncoding == nil {
		opts.FallbackEncoding = charmap.Windows1252
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &Archive{path: path, opts: opts}

	err := a.walk(func(hdr *tar.Header, name string, _ io.Reader) error {
		a.members = append(a.members, Member{
			Name:    name,
			Size:    hdr.Size,
			ModTime: hdr.ModTime,
			entry:   hdr.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("archive indexed", "path", path, "log_root", opts.LogRoot, "members", len(a.members))
	return a, nil
}

// Path returns the archive location.
func (a *Archive) Path() string {
	return a.path
}

// Members returns all log files under the log root, in archive order.
func (a *Archive) Members() []Member {
	return a.members
}

// Close removes the working directory created by Extract.
func (a *Archive) Close() error {
	if a.workDir == "" {
		return nil
	}
	err := os.RemoveAll(a.workDir)
	a.workDir = ""
	return err
}

// walk streams the archive once and calls fn for every regular file under the log root.
func (a *Archive) walk(fn func(hdr *tar.Header, name string, r io.Reader) error) error {
	f, err := os.Open(a.path)
	if err != nil {
		return a.fail("", err)
	}
	defer func() { _ = f.Close() }()

	stream, err := decompress(f)
	if err != nil {
		return a.fail("", err)
	}
	defer func() { _ = stream.Close() }()

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return a.fail("", fmt.Errorf("failed to read tar header: %w", err))
		}

		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, ok := a.relative(hdr.Name)
		if !ok {
			continue
		}

		if err := fn(hdr, name, tr); err != nil {
			return err
		}
	}
}

// relative maps a tar entry name to a member name under the log root.
func (a *Archive) relative(entry string) (string, bool) {
	name := cleanEntry(entry)
	if a.opts.LogRoot == "" || a.opts.LogRoot == "." {
		return name, name != ""
	}

	prefix := a.opts.LogRoot + "/"
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	name = strings.TrimPrefix(name, prefix)
	return name, name != ""
}

func (a *Archive) fail(member string, err error) error {
	return &apperrors.ExtractionError{Source: a.path, Member: member, Err: err}
}

// cleanEntry normalizes a tar entry name: no leading "./" or "/", no "..".
func cleanEntry(name string) string {
	name = path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(name, "/")
}

// decompress detects a gzip stream by its magic bytes; anything else is read as plain tar.
func decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read archive header: %w", err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip stream: %w", err)
		}
		return zr, nil
	}

	return io.NopCloser(br), nil
}
