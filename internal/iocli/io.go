// Package iocli is the console used by the administration tools.
package iocli

// IO
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadPassword(prompt string) (string, error)
}
