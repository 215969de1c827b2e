package xnet

import (
	"net"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

const (
	schemeTCP  = "tcp://"
	schemeUnix = "unix://"

	// unnamedPlaceholder is how an unnamed UNIX address renders. It carries
	// no scheme on purpose: formatting and parsing are not a round trip for
	// unnamed addresses, and parsing the placeholder back always fails.
	unnamedPlaceholder = "(unnamed unix socket)"
)

// Addr is a socket address of exactly one of two kinds: a TCP endpoint or a
// UNIX-domain endpoint. The kind is fixed at construction. Addr satisfies
// net.Addr; the zero Addr is invalid and is never produced by ParseAddr or
// the constructors.
//
// A UNIX-domain Addr holds either a filesystem path, an abstract name
// (stored with the conventional '@' prefix in net.UnixAddr.Name), or nothing
// at all. The latter, unnamed form only ever shows up when introspecting a
// live socket, such as the peer of an anonymous client; it is not a valid
// target for Listen or Dial.
type Addr struct {
	tcp  *net.TCPAddr
	unix *net.UnixAddr
}

// TCP returns the address of the TCP endpoint at ip:port.
func TCP(ip net.IP, port uint16) Addr {
	return Addr{tcp: &net.TCPAddr{IP: ip, Port: int(port)}}
}

// Unix returns the address of the UNIX-domain socket at the given filesystem
// path. A leading '@' selects the abstract namespace, following the net
// package convention. No validation happens here; an unusable path surfaces
// as a transport error from Listen or Dial.
func Unix(path string) Addr {
	return Addr{unix: &net.UnixAddr{Name: path, Net: "unix"}}
}

// Abstract returns the address of the UNIX-domain socket with the given
// abstract-namespace name. It fails with ErrAbstractUnsupported on platforms
// without an abstract namespace.
func Abstract(name string) (Addr, error) {
	if !hasAbstractNamespace {
		return Addr{}, errors.Wrapf(ErrAbstractUnsupported, "abstract name %q", name)
	}
	return Addr{unix: &net.UnixAddr{Name: "@" + name, Net: "unix"}}, nil
}

// FromTCPAddr wraps a native TCP address.
func FromTCPAddr(a *net.TCPAddr) Addr {
	return Addr{tcp: a}
}

// FromUnixAddr wraps a native UNIX-domain address.
func FromUnixAddr(a *net.UnixAddr) Addr {
	return Addr{unix: a}
}

// fromNetAddr converts any address handed out by the wrapped net types. An
// unrecognized kind yields the zero Addr.
func fromNetAddr(a net.Addr) Addr {
	switch a := a.(type) {
	case *net.TCPAddr:
		return Addr{tcp: a}
	case *net.UnixAddr:
		return Addr{unix: a}
	}
	return Addr{}
}

// ParseAddr parses the textual form of an address:
//
//	tcp://<ip>:<port>
//	unix://<path>
//	unix://@<name>
//
// The IP must be a literal IPv4 or IPv6 address (bracketed for IPv6); no
// name resolution is performed. The '@' form parses only on platforms with
// an abstract socket namespace. An unrecognized scheme fails with
// ErrInvalidScheme; a malformed body fails with the underlying syntax error.
func ParseAddr(s string) (Addr, error) {
	if body, ok := strings.CutPrefix(s, schemeTCP); ok {
		ap, err := netip.ParseAddrPort(body)
		if err != nil {
			return Addr{}, errors.Wrapf(err, "parse %q", s)
		}
		return Addr{tcp: net.TCPAddrFromAddrPort(ap)}, nil
	}
	if body, ok := strings.CutPrefix(s, schemeUnix); ok {
		if strings.HasPrefix(body, "@") && !hasAbstractNamespace {
			return Addr{}, errors.Wrapf(ErrAbstractUnsupported, "parse %q", s)
		}
		if strings.IndexByte(body, 0) >= 0 {
			return Addr{}, errors.Errorf("parse %q: name must not contain NUL bytes", s)
		}
		return Addr{unix: &net.UnixAddr{Name: body, Net: "unix"}}, nil
	}
	return Addr{}, errors.Wrapf(ErrInvalidScheme, "parse %q", s)
}

// IsTCP reports whether the address is a TCP endpoint.
func (a Addr) IsTCP() bool { return a.tcp != nil }

// IsUnix reports whether the address is a UNIX-domain endpoint.
func (a Addr) IsUnix() bool { return a.unix != nil }

// IsUnnamed reports whether the address is a UNIX-domain endpoint with
// neither a path nor an abstract name.
func (a Addr) IsUnnamed() bool { return a.unix != nil && a.unix.Name == "" }

// IsAbstract reports whether the address names a socket in the abstract
// namespace.
func (a Addr) IsAbstract() bool {
	return a.unix != nil && strings.HasPrefix(a.unix.Name, "@")
}

// TCPAddr returns the wrapped native TCP address, or nil for a UNIX-domain
// address.
func (a Addr) TCPAddr() *net.TCPAddr { return a.tcp }

// UnixAddr returns the wrapped native UNIX-domain address, or nil for a TCP
// address.
func (a Addr) UnixAddr() *net.UnixAddr { return a.unix }

// Network returns "tcp" or "unix".
func (a Addr) Network() string {
	switch {
	case a.tcp != nil:
		return "tcp"
	case a.unix != nil:
		return "unix"
	}
	return ""
}

// String renders the address in the same form ParseAddr accepts, except for
// unnamed UNIX addresses which render as a fixed placeholder that never
// parses back.
func (a Addr) String() string {
	switch {
	case a.tcp != nil:
		return schemeTCP + a.tcp.String()
	case a.unix != nil:
		if a.unix.Name == "" {
			return unnamedPlaceholder
		}
		return schemeUnix + a.unix.Name
	}
	return "(invalid address)"
}

// MarshalText renders the address for text-based codecs such as
// encoding/json. Unnamed UNIX addresses have no parseable text form and
// fail to marshal.
func (a Addr) MarshalText() ([]byte, error) {
	if a.tcp == nil && a.unix == nil {
		return nil, errors.New("cannot marshal the zero Addr")
	}
	if a.IsUnnamed() {
		return nil, errors.New("an unnamed unix address has no text form")
	}
	return []byte(a.String()), nil
}

// UnmarshalText parses text with ParseAddr.
func (a *Addr) UnmarshalText(text []byte) error {
	parsed, err := ParseAddr(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
