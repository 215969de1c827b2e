//go:build !linux

package xnet

const hasAbstractNamespace = false
