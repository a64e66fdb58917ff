package sf2

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// diagLogger is the load-time diagnostic sink (spec.md §4.H: "writing
// diagnostic messages to the host's logging channel at load time"). It is
// never touched from the render path — render must not allocate or block
// (spec.md §5).
type diagLogger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
}

// defaultLogger is a package-level charmbracelet/log logger used until a
// caller overrides it via SetLogger.
var defaultLogger diagLogger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	Prefix: "sf2",
	Level:  charmlog.InfoLevel,
})

// SetLogger replaces the package-level diagnostic logger. Hosts embedding
// this engine that already run charmbracelet/log (or any logger satisfying
// this three-method interface) can route sf2's load-time diagnostics
// through their own sink.
func SetLogger(l diagLogger) {
	if l != nil {
		defaultLogger = l
	}
}
