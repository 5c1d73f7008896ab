package hostsfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

// The managed block is delimited by these two lines. Everything outside
// them belongs to the user and is never touched.
const (
	StartMarker = "## docker-hostmanager-start"
	EndMarker   = "## docker-hostmanager-end"
)

// FormatError reports a hosts file whose marker structure cannot be
// trusted. The writer refuses to modify such a file.
type FormatError struct {
	reason string
}

func (e *FormatError) Error() string {
	return "hosts file format error: " + e.reason
}

// Writer maintains the managed block inside a single hosts file.
type Writer struct {
	logger zerolog.Logger
	path   string
	write  func(filename string, r io.Reader) error
}

func NewWriter(path string, logger zerolog.Logger) *Writer {
	return &Writer{
		logger: logger,
		path:   path,
		write:  atomic.WriteFile,
	}
}

// Flush replaces the managed block with the given entries. The file is
// rewritten through a temp file and rename, so readers never observe a
// half-written hosts file. A flush that would not change the file is a
// no-op.
func (w *Writer) Flush(ctx context.Context, entries []hosts.Entry) error {
	current, err := os.ReadFile(w.path)
	exists := true
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", w.path, err)
		}
		exists = false
		current = nil
	}

	next, err := renderFile(current, entries)
	if err != nil {
		return fmt.Errorf("%s: %w", w.path, err)
	}

	if exists && bytes.Equal(next, current) {
		w.logger.Debug().Str("path", w.path).Msg("hosts file already up to date")
		return nil
	}

	if err := w.write(w.path, bytes.NewReader(next)); err != nil {
		return fmt.Errorf("writing %s: %w", w.path, err)
	}
	if !exists {
		if err := os.Chmod(w.path, 0o644); err != nil {
			return fmt.Errorf("setting mode on %s: %w", w.path, err)
		}
	}
	w.logger.Info().Str("path", w.path).Int("entries", len(entries)).Msg("hosts file updated")
	return nil
}

// renderFile splices the rendered entries into the managed block of the
// current file content, or appends a fresh block when none exists yet.
func renderFile(current []byte, entries []hosts.Entry) ([]byte, error) {
	body := hosts.FormatLines(entries)
	lines := strings.Split(string(current), "\n")

	start, end := -1, -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case StartMarker:
			if start != -1 {
				return nil, &FormatError{reason: fmt.Sprintf("duplicate start marker at line %d", i+1)}
			}
			start = i
		case EndMarker:
			if end != -1 {
				return nil, &FormatError{reason: fmt.Sprintf("duplicate end marker at line %d", i+1)}
			}
			if start == -1 {
				return nil, &FormatError{reason: fmt.Sprintf("end marker before start marker at line %d", i+1)}
			}
			end = i
		}
	}
	if start != -1 && end == -1 {
		return nil, &FormatError{reason: "start marker without end marker"}
	}

	out := make([]string, 0, len(lines)+len(body)+3)
	if start == -1 {
		// No block yet: append one, making sure the preamble is newline
		// terminated first. A trailing empty element in lines stands for
		// the file's final newline.
		preamble := lines
		if len(preamble) > 0 && preamble[len(preamble)-1] == "" {
			preamble = preamble[:len(preamble)-1]
		}
		out = append(out, preamble...)
		out = append(out, StartMarker)
		out = append(out, body...)
		out = append(out, EndMarker)
	} else {
		out = append(out, lines[:start]...)
		out = append(out, StartMarker)
		out = append(out, body...)
		out = append(out, EndMarker)
		out = append(out, lines[end+1:]...)
	}
	if out[len(out)-1] != "" {
		out = append(out, "")
	}
	return []byte(strings.Join(out, "\n")), nil
}
