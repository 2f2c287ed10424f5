package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/apex/log"
)

// Init installs a LineHandler on stdout and sets the level, e.g. "debug" or
// "error". Unknown levels fall back to info.
func Init(level string) {
	log.SetHandler(NewLineHandler(os.Stdout))

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// LineHandler writes one line per entry: timestamp, level initial, message
// and the entry fields in name order.
type LineHandler struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineHandler(w io.Writer) *LineHandler {
	return &LineHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *LineHandler) HandleLog(e *log.Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		strings.ToUpper(e.Level.String()),
		e.Message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
