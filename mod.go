// Package xnet is a transport-agnostic stream layer: one address, listener,
// and stream family that works over both TCP and UNIX-domain sockets, with
// the transport selected by an address scheme rather than by call-site
// branching.
//
// Addresses are written tcp://ip:port, unix://path, or unix://@name for the
// abstract namespace on platforms that have one. Listen and Dial accept
// anything ResolveAddrs understands and try the resulting candidates in
// order, binding or connecting to the first one the operating system
// accepts.
//
// Streams expose the usual blocking byte-stream interface alongside
// non-blocking TryRead/TryWrite variants and readiness waits driven by the
// runtime network poller. A stream may be divided into read and write halves
// either by borrowing (Split) or by transferring ownership (IntoSplit).
package xnet
