package security

import "strings"

// ApplicationMode is the deployment profile.
type ApplicationMode string

const (
	ModeDev    ApplicationMode = "dev"
	ModeProd   ApplicationMode = "prod"
	ModeQATest ApplicationMode = "qatest"
)

func (m ApplicationMode) String() string {
	return string(m)
}

// IsDev reports whether m is the development profile.
func (m ApplicationMode) IsDev() bool {
	return m == ModeDev
}

// ParseApplicationMode maps a mode name to its ApplicationMode.
func ParseApplicationMode(name string) (ApplicationMode, error) {
	switch mode := ApplicationMode(strings.ToLower(strings.TrimSpace(name))); mode {
	case ModeDev, ModeProd, ModeQATest:
		return mode, nil
	default:
		return "", ErrUnknownApplicationMode.Clone().WithMetadata(map[string]any{"mode": name})
	}
}
