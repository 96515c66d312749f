package app

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger. format is "console",
// "json", or "auto" (console on a terminal, JSON otherwise).
func SetupLogging(w io.Writer, format string, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if useConsole(w, format) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func useConsole(w io.Writer, format string) bool {
	switch format {
	case "console":
		return true
	case "json":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
