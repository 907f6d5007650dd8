package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding"
)

// LogFile is an extracted, decompressed member ready to be read line by line.
type LogFile struct {
	name     string
	path     string
	fallback encoding.Encoding
}

// Name returns the member name without a trailing ".gz".
func (f *LogFile) Name() string {
	return f.name
}

// Transcoded reports whether the content is decoded from the fallback encoding.
func (f *LogFile) Transcoded() bool {
	return f.fallback != nil
}

// Open returns the UTF-8 content of the file.
func (f *LogFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	if f.fallback == nil {
		return file, nil
	}
	return decodingReader{Reader: f.fallback.NewDecoder().Reader(file), Closer: file}, nil
}

type decodingReader struct {
	io.Reader
	io.Closer
}

// Extract decompresses the given members into a private working directory and returns
// them in the order given. Members ending in ".gz" are gunzipped; a member whose gzip
// stream is corrupt is skipped with a warning. Content that is not valid UTF-8 is
// decoded from the fallback encoding when read.
func (a *Archive) Extract(members []Member) ([]*LogFile, error) {
	if len(members) == 0 {
		return nil, nil
	}

	if a.workDir == "" {
		dir, err := os.MkdirTemp("", "logc-*")
		if err != nil {
			return nil, a.fail("", fmt.Errorf("failed to create working directory: %w", err))
		}
		a.workDir = dir
	}

	slots := make(map[string]int, len(members))
	for i, m := range members {
		slots[m.entry] = i
	}
	files := make([]*LogFile, len(members))
	found := make([]bool, len(members))

	err := a.walk(func(hdr *tar.Header, name string, r io.Reader) error {
		i, ok := slots[hdr.Name]
		if !ok || found[i] {
			return nil
		}
		found[i] = true

		f, skip, err := a.extractMember(i, name, r)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		files[i] = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*LogFile, 0, len(files))
	for i, f := range files {
		if !found[i] {
			return nil, a.fail(members[i].Name, ErrMemberNotFound)
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// extractMember copies one member into the working directory. skip is true when the
// member's own gzip stream is unreadable.
func (a *Archive) extractMember(slot int, name string, r io.Reader) (f *LogFile, skip bool, err error) {
	target := filepath.Join(a.workDir, fmt.Sprintf("%04d", slot))
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, false, a.fail(name, fmt.Errorf("failed to create working file: %w", err))
	}

	src := r
	logName := name
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		logName = name[:len(name)-len(".gz")]
		zr, zerr := gzip.NewReader(r)
		if zerr == nil {
			defer func() { _ = zr.Close() }()
			src = zr
		} else {
			err = zerr
		}
	}

	checker := &utf8Checker{}
	if err == nil {
		_, err = io.Copy(io.MultiWriter(out, checker), src)
	}
	closeErr := out.Close()

	if err != nil {
		_ = os.Remove(target) // Best effort cleanup
		if logName != name {
			a.opts.Logger.Warn("skipping corrupt compressed member", "archive", a.path, "member", name, "error", err)
			return nil, true, nil
		}
		return nil, false, a.fail(name, err)
	}
	if closeErr != nil {
		return nil, false, a.fail(name, closeErr)
	}

	f = &LogFile{name: logName, path: target}
	if !checker.Valid() {
		a.opts.Logger.Debug("member is not valid UTF-8, decoding with fallback encoding", "member", name)
		f.fallback = a.opts.FallbackEncoding
	}
	return f, false, nil
}

// utf8Checker validates a byte stream written in arbitrary chunks.
type utf8Checker struct {
	pending []byte
	invalid bool
}

func (c *utf8Checker) Write(p []byte) (int, error) {
	if c.invalid {
		return len(p), nil
	}

	data := append(c.pending, p...)
	cut := len(data)
	// Hold back an incomplete sequence at the end of the chunk.
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				cut = i
			}
			break
		}
	}

	if !utf8.Valid(data[:cut]) {
		c.invalid = true
		c.pending = nil
		return len(p), nil
	}
	c.pending = append(c.pending[:0], data[cut:]...)
	return len(p), nil
}

// Valid reports whether everything written so far is valid UTF-8.
func (c *utf8Checker) Valid() bool {
	return !c.invalid && len(c.pending) == 0
}
