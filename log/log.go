// Package log exposes the package-wide zerolog logger used by xnet. The
// library only ever emits debug-level events, on the address-resolution
// fallback path; everything else stays silent.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Disable silences the xnet logger.
func Disable() {
	logger = zerolog.Nop()
}

// Output redirects the logger to w.
func Output(w io.Writer) {
	logger = logger.Output(w)
}

// Level sets the minimum accepted level.
func Level(level zerolog.Level) {
	logger = logger.Level(level)
}

// Debug starts a new message with debug level.
//
// You must call Msg on the returned event in order to send the event.
func Debug() *zerolog.Event {
	return logger.Debug()
}

// Error starts a new message with error level.
//
// You must call Msg on the returned event in order to send the event.
func Error() *zerolog.Event {
	return logger.Error()
}
