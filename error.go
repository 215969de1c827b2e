package xnet

import "github.com/pkg/errors"

var (
	// ErrInvalidScheme is reported when parsing text that does not begin
	// with the tcp:// or unix:// scheme.
	ErrInvalidScheme = errors.New("invalid scheme")

	// ErrWouldBlock is reported by the non-blocking operations when the
	// descriptor is not ready to make progress.
	ErrWouldBlock = errors.New("operation would block")

	// ErrNoAddrs is reported by Listen and Dial when resolution yields an
	// empty candidate set.
	ErrNoAddrs = errors.New("no addresses to bind or dial")

	// ErrAbstractUnsupported is reported when an abstract-namespace name is
	// used on a platform without an abstract socket namespace.
	ErrAbstractUnsupported = errors.New("abstract socket names are not supported on this platform")
)
