package xnet_test

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlin-network/xnet"
)

// badUnixTarget returns a unix:// address whose parent directory does not
// exist, so binding or dialing it fails deterministically.
func badUnixTarget(t *testing.T, name string) string {
	t.Helper()
	return "unix://" + filepath.Join(t.TempDir(), "missing", name)
}

func TestListenFirstSuccess(t *testing.T) {
	ctx := context.Background()

	ln, err := xnet.Listen(ctx, []string{
		badUnixTarget(t, "first.sock"),
		"tcp://127.0.0.1:0",
		badUnixTarget(t, "never-tried.sock"),
	})
	require.NoError(t, err)
	defer ln.Close()

	assert.True(t, ln.IsTCP())
	assert.False(t, ln.IsUnix())
	assert.True(t, ln.Addr().IsTCP())
}

func TestListenReportsLastError(t *testing.T) {
	ctx := context.Background()

	_, err := xnet.Listen(ctx, []string{
		badUnixTarget(t, "first.sock"),
		badUnixTarget(t, "second.sock"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second.sock")
	assert.NotContains(t, err.Error(), "first.sock")
}

func TestListenNoCandidates(t *testing.T) {
	_, err := xnet.Listen(context.Background(), []xnet.Addr{})
	assert.ErrorIs(t, err, xnet.ErrNoAddrs)
}

func TestListenParseErrorAborts(t *testing.T) {
	_, err := xnet.Listen(context.Background(), "ftp://127.0.0.1:1")
	assert.ErrorIs(t, err, xnet.ErrInvalidScheme)
}

func TestListenUnnamedPanics(t *testing.T) {
	unnamed := xnet.FromUnixAddr(&net.UnixAddr{Net: "unix"})
	assert.Panics(t, func() {
		xnet.Listen(context.Background(), unnamed)
	})
}

func TestAcceptContextCancel(t *testing.T) {
	ln, err := xnet.Listen(context.Background(), "tcp://127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, _, err = ln.Accept(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// A cancelled accept has no side effects; the listener keeps working.
	go func() {
		conn, err := xnet.Dial(context.Background(), ln.Addr())
		if err == nil {
			conn.Close()
		}
	}()

	conn, peer, err := ln.Accept(context.Background())
	require.NoError(t, err)
	defer conn.Close()
	assert.True(t, peer.IsTCP())
}

func TestTryAccept(t *testing.T) {
	ctx := context.Background()

	ln, err := xnet.Listen(ctx, "tcp://127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, _, err = ln.TryAccept()
	assert.ErrorIs(t, err, xnet.ErrWouldBlock)

	client, err := xnet.Dial(ctx, ln.Addr())
	require.NoError(t, err)
	defer client.Close()

	var server *xnet.Stream
	var peer xnet.Addr
	deadline := time.Now().Add(5 * time.Second)
	for {
		server, peer, err = ln.TryAccept()
		if err == nil {
			break
		}
		require.ErrorIs(t, err, xnet.ErrWouldBlock)
		require.True(t, time.Now().Before(deadline), "timed out waiting for a pending connection")
		time.Sleep(10 * time.Millisecond)
	}
	defer server.Close()

	assert.True(t, server.IsTCP())
	assert.Equal(t, client.LocalAddr().String(), peer.String())

	_, err = client.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := server.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestUnixListener(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "listener.sock")

	ln, err := xnet.Listen(ctx, "unix://"+path)
	require.NoError(t, err)
	defer ln.Close()

	assert.True(t, ln.IsUnix())
	assert.Equal(t, "unix://"+path, ln.Addr().String())
	assert.NoError(t, ln.TakeError())

	go func() {
		conn, _, err := ln.Accept(ctx)
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 5)
		if n, err := conn.Read(buf); err == nil {
			conn.Write(buf[:n])
		}
	}()

	client, err := xnet.Dial(ctx, ln.Addr())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.IsUnix())

	_, err = client.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestAbstractNamespace(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("abstract namespace requires linux")
	}

	ctx := context.Background()
	text := fmt.Sprintf("unix://@xnet-test-%d", os.Getpid())

	ln, err := xnet.Listen(ctx, text)
	require.NoError(t, err)
	defer ln.Close()

	assert.True(t, ln.IsUnix())
	assert.True(t, ln.Addr().IsAbstract())
	assert.Equal(t, text, ln.Addr().String())

	go func() {
		conn, _, err := ln.Accept(ctx)
		if err != nil {
			return
		}
		conn.Write([]byte("abstract"))
		conn.Close()
	}()

	client, err := xnet.Dial(ctx, text)
	require.NoError(t, err)
	defer client.Close()

	buf := make([]byte, 8)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abstract", string(buf[:n]))
}

func TestListenerTakeErrorTCP(t *testing.T) {
	ln, err := xnet.Listen(context.Background(), "tcp://127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// The deferred-error capability does not exist for TCP listeners.
	assert.NoError(t, ln.TakeError())
}

func TestListenerWrapsNative(t *testing.T) {
	native, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	ln := xnet.FromTCPListener(native)
	defer ln.Close()

	assert.True(t, ln.IsTCP())

	rc, err := ln.SyscallConn()
	require.NoError(t, err)
	assert.NotNil(t, rc)
}
