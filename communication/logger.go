package communication

import "fmt"

// Logger is the logging contract used by the package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MAIL "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MAIL "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] MAIL "+newline(format), args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MAIL "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
