package format

import "fmt"

// UnknownFormatError is returned when no registered driver claims a file
// extension.
type UnknownFormatError struct {
	Ext       string
	Available []string
}

// Error implements the error interface.
func (e *UnknownFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported vector format %q\nAvailable formats: %v\nHint: 'leapgeo formats' lists the registered extensions", ext, e.Available)
}

// ReadError reports an I/O or decode failure while loading a vector file.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports an I/O or encode failure while persisting a layer.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WriteError) Unwrap() error { return e.Err }
