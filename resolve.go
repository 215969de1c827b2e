package xnet

import (
	"net"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// Source yields the ordered candidate addresses some value resolves to. The
// slice is finite, freshly allocated on every call, and preserves the order
// candidates should be tried in.
type Source interface {
	Addrs() ([]Addr, error)
}

// Addrs resolves the address to itself.
func (a Addr) Addrs() ([]Addr, error) {
	return []Addr{a}, nil
}

// Path is a filesystem path resolving to a UNIX-domain address. A leading
// '@' selects the abstract namespace on platforms that have one and fails
// resolution elsewhere.
type Path string

// Addrs implements Source.
func (p Path) Addrs() ([]Addr, error) {
	if strings.HasPrefix(string(p), "@") && !hasAbstractNamespace {
		return nil, errors.Wrapf(ErrAbstractUnsupported, "resolve path %q", string(p))
	}
	return []Addr{Unix(string(p))}, nil
}

// ResolveAddrs expands v into an ordered candidate list. It accepts an Addr,
// a parseable string, native *net.TCPAddr, *net.UnixAddr, and netip.AddrPort
// values, a Path, any Source, and slices of all of the above; a slice
// resolves to the concatenation of each element's own resolution, in order.
// A parse or resolution failure on any element fails the whole call.
func ResolveAddrs(v interface{}) ([]Addr, error) {
	switch v := v.(type) {
	case Addr:
		return v.Addrs()
	case string:
		a, err := ParseAddr(v)
		if err != nil {
			return nil, err
		}
		return []Addr{a}, nil
	case *net.TCPAddr:
		return []Addr{FromTCPAddr(v)}, nil
	case *net.UnixAddr:
		return []Addr{FromUnixAddr(v)}, nil
	case netip.AddrPort:
		return []Addr{FromTCPAddr(net.TCPAddrFromAddrPort(v))}, nil
	case []Addr:
		out := make([]Addr, len(v))
		copy(out, v)
		return out, nil
	case []string:
		out := make([]Addr, 0, len(v))
		for _, s := range v {
			a, err := ParseAddr(s)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
		return out, nil
	case []Source:
		var out []Addr
		for _, src := range v {
			addrs, err := src.Addrs()
			if err != nil {
				return nil, err
			}
			out = append(out, addrs...)
		}
		return out, nil
	case []interface{}:
		var out []Addr
		for _, item := range v {
			addrs, err := ResolveAddrs(item)
			if err != nil {
				return nil, err
			}
			out = append(out, addrs...)
		}
		return out, nil
	case Source:
		return v.Addrs()
	case nil:
		return nil, errors.New("cannot resolve an address from nil")
	}
	return nil, errors.Errorf("cannot resolve an address from %T", v)
}
