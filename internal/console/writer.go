package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"logvault/pkg/models"
)

const timeFormat = "2006-01-02 15:04:05"

// Writer is a handler printing one line per record:
//
//	[2024-03-01 12:30:45] [ERROR] disk full path=/var free=0
//
// Context keys are printed in sorted order.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a handler writing to out, which must not be nil.
func NewWriter(out io.Writer) *Writer {
	if out == nil {
		panic("console.NewWriter() called with a nil io.Writer")
	}
	return &Writer{out: out}
}

// Handle formats and writes the record. Write errors are returned to the logger.
func (w *Writer) Handle(record models.LogRecord) error {
	line := Format(record)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.out, line)
	return err
}

// Write passes p through unchanged under the same lock as Handle, so other line
// oriented output, such as request logs, can share the stream.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

// Format renders a record the way Handle writes it, including the trailing newline.
func Format(record models.LogRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s",
		record.Timestamp.Format(timeFormat),
		strings.ToUpper(record.Level.String()),
		record.Message)

	keys := make([]string, 0, len(record.Context))
	for k := range record.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, record.Context[k])
	}
	b.WriteByte('\n')
	return b.String()
}
