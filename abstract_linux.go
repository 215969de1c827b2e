//go:build linux

package xnet

// Abstract socket names live outside the filesystem. Linux and Android are
// the only platforms that have them; GOOS=android satisfies the linux build
// constraint.
const hasAbstractNamespace = true
