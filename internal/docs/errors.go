package docs

import (
	"errors"
	"fmt"
)

// Sentinels for the fetch failure kinds. A *FetchError matches exactly one
// of them under errors.Is.
var (
	ErrNotFound        = errors.New("crate or version not found on docs.rs")
	ErrDocsUnavailable = errors.New("rustdoc JSON not available for this build")
	ErrDecompress      = errors.New("decompressing rustdoc JSON")
	ErrParse           = errors.New("parsing rustdoc JSON")
	ErrFormatMismatch  = errors.New("rustdoc JSON format version mismatch")
	ErrTransport       = errors.New("docs.rs request failed")
)

// Not-found conditions reported by the query layer.
var (
	ErrModuleNotFound = errors.New("module not found")
	ErrItemNotFound   = errors.New("item not found")
)

// PathError reports a module or item path that did not resolve within a
// fetched crate. It matches ErrModuleNotFound or ErrItemNotFound.
type PathError struct {
	Kind    error
	Path    string
	Crate   string
	Version string
}

func (e *PathError) Error() string {
	what := "Item"
	if e.Kind == ErrModuleNotFound {
		what = "Module"
	}
	return fmt.Sprintf("%s '%s' not found in %s v%s", what, e.Path, e.Crate, e.Version)
}

func (e *PathError) Is(target error) bool {
	return target == e.Kind
}

// FetchError describes a failed Fetcher call.
type FetchError struct {
	Kind     error // one of the Err* fetch sentinels
	Crate    string
	Version  string
	Status   int // upstream HTTP status, Transport only
	Expected int // FormatMismatch only
	Actual   int // FormatMismatch only
	Err      error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return fmt.Sprintf("crate %s version %s not found on docs.rs", e.Crate, e.Version)
	case ErrDocsUnavailable:
		return fmt.Sprintf("rustdoc JSON is not available for %s %s (the docs.rs build predates JSON output)", e.Crate, e.Version)
	case ErrFormatMismatch:
		var direction string
		if e.Actual > e.Expected {
			direction = "consider upgrading rsdoc"
		} else {
			direction = "the crate's docs were built with an older rustdoc"
		}
		return fmt.Sprintf("docs.rs serves format v%d but rsdoc supports v%d -- %s: %v", e.Actual, e.Expected, direction, e.Err)
	case ErrTransport:
		if e.Status != 0 {
			return fmt.Sprintf("docs.rs returned HTTP %d for %s %s", e.Status, e.Crate, e.Version)
		}
		return fmt.Sprintf("fetching %s %s from docs.rs: %v", e.Crate, e.Version, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v for %s %s: %v", e.Kind, e.Crate, e.Version, e.Err)
	}
	return fmt.Sprintf("%v for %s %s", e.Kind, e.Crate, e.Version)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}
