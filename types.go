package security

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserDetailsService loads the user identified by the token subject.
type UserDetailsService interface {
	LoadUserByUsername(ctx context.Context, username string) (*AuthUser, error)
}

// UserDetailsServiceFunc adapts a function to UserDetailsService.
type UserDetailsServiceFunc func(ctx context.Context, username string) (*AuthUser, error)

// LoadUserByUsername calls f.
func (f UserDetailsServiceFunc) LoadUserByUsername(ctx context.Context, username string) (*AuthUser, error) {
	return f(ctx, username)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SECURITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SECURITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SECURITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SECURITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
