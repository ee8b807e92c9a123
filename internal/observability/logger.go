package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Options configures InitLogger
type Options struct {
	// Level is a zerolog level name; empty means info
	Level string
	// Format is auto, console or json. Auto picks console on a terminal.
	Format string
	// Out defaults to os.Stderr
	Out io.Writer
}

// InitLogger builds the process logger, installs it as the global zerolog
// logger and tags every entry with app and a fresh run_id.
func InitLogger(app string, opts Options) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var writer io.Writer
	switch opts.Format {
	case "json":
		writer = out
	case "console":
		writer = consoleWriter(out)
	case "", "auto":
		if isTerminal(out) {
			writer = consoleWriter(out)
		} else {
			writer = out
		}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q: must be auto, console or json", opts.Format)
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("app", app).
		Str("run_id", uuid.NewString()).
		Logger()
	log.Logger = logger
	return logger, nil
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
