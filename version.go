package security

// Version is the library release.
const Version = "1.0.2"

// GroupID identifies the library publisher.
const GroupID = "pl.miloszgilga"

// Modules lists the modules aggregated by this library. Each maps to a
// package of this Go module.
func Modules() []string {
	return []string{
		"jmpsl-core",
		"jmpsl-security",
		"jmpsl-oauth2",
		"jmpsl-communication",
		"jmpsl-file",
		"jmpsl-gfx",
	}
}
