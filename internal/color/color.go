// Package color maps semantic tags to message accent colors.
package color

// Tag is a semantic presentation color.
type Tag string

const (
	Default Tag = ""
	Info    Tag = "info"
	OK      Tag = "ok"
	Warn    Tag = "warn"
	Error   Tag = "error"
)

const (
	defaultColor = 0x5865f2
	infoColor    = 0x3498db
	okColor      = 0x2ecc71
	warnColor    = 0xf1c40f
	errorColor   = 0xe74c3c
)

// Resolve returns the RGB value for a tag. Unknown tags get the default color.
func Resolve(t Tag) int {
	switch t {
	case Info:
		return infoColor
	case OK:
		return okColor
	case Warn:
		return warnColor
	case Error, "err":
		return errorColor
	default:
		return defaultColor
	}
}

// Known reports whether t is a tag Resolve recognizes.
func Known(t Tag) bool {
	switch t {
	case Default, Info, OK, Warn, Error, "err":
		return true
	}
	return false
}
