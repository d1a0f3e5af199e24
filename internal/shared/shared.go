// package shared defines shared helpers
package shared

import (
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
//
// A nil parent yields a logger that discards everything so components can be built without one.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	if l == nil {
		l = log.NewWithOptions(io.Discard, log.Options{})
	}
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ParseLogLevel maps a config string to a [log.Level], defaulting to info.
func ParseLogLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateTimestampID returns the decimal epoch-millisecond representation of t.
//
// Entity ids are unique only at millisecond granularity.
func GenerateTimestampID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

const logSuffixLen = 8

// GenerateLogID returns "<epoch ms>-<8 base36 chars>" for activity log entries.
//
// The suffix is drawn from a random v4 UUID.
func GenerateLogID(t time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:])
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < logSuffixLen {
		suffix = strings.Repeat("0", logSuffixLen-len(suffix)) + suffix
	}
	return GenerateTimestampID(t) + "-" + suffix[len(suffix)-logSuffixLen:]
}

// NormalizeMood lowercases and trims a mood identifier for case-insensitive comparison.
func NormalizeMood(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}
