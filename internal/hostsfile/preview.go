package hostsfile

import (
	"context"
	"io"
	"strings"

	"github.com/auto-dns/docker-hostmanager/internal/hosts"
)

// Preview renders the managed block to a writer instead of a file. It
// backs the watch command, which shows what would be written without
// touching anything.
type Preview struct {
	out io.Writer
}

func NewPreview(out io.Writer) *Preview {
	return &Preview{out: out}
}

func (p *Preview) Flush(ctx context.Context, entries []hosts.Entry) error {
	lines := make([]string, 0, len(entries)+3)
	lines = append(lines, StartMarker)
	lines = append(lines, hosts.FormatLines(entries)...)
	lines = append(lines, EndMarker, "")
	_, err := io.WriteString(p.out, strings.Join(lines, "\n"))
	return err
}
