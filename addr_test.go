package xnet_test

import (
	"encoding/json"
	"net"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlin-network/xnet"
	"github.com/perlin-network/xnet/log"
)

func TestMain(m *testing.M) {
	log.Disable()
	os.Exit(m.Run())
}

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []string{
		"tcp://127.0.0.1:4000",
		"tcp://0.0.0.0:0",
		"tcp://[::1]:9000",
		"unix:///tmp/echo.sock",
		"unix://relative/path.sock",
	}
	if runtime.GOOS == "linux" {
		cases = append(cases, "unix://@test-socket")
	}

	for _, text := range cases {
		addr, err := xnet.ParseAddr(text)
		require.NoError(t, err, "parse %q", text)
		assert.Equal(t, text, addr.String())

		reparsed, err := xnet.ParseAddr(addr.String())
		require.NoError(t, err)
		assert.Equal(t, addr.String(), reparsed.String())
	}
}

func TestParseTCP(t *testing.T) {
	addr, err := xnet.ParseAddr("tcp://192.168.1.7:8080")
	require.NoError(t, err)

	assert.True(t, addr.IsTCP())
	assert.False(t, addr.IsUnix())
	assert.Equal(t, "tcp", addr.Network())
	require.NotNil(t, addr.TCPAddr())
	assert.Equal(t, 8080, addr.TCPAddr().Port)
	assert.True(t, addr.TCPAddr().IP.Equal(net.IPv4(192, 168, 1, 7)))
	assert.Nil(t, addr.UnixAddr())
}

func TestParseUnixPath(t *testing.T) {
	addr, err := xnet.ParseAddr("unix:///var/run/app.sock")
	require.NoError(t, err)

	assert.True(t, addr.IsUnix())
	assert.False(t, addr.IsTCP())
	assert.False(t, addr.IsUnnamed())
	assert.False(t, addr.IsAbstract())
	assert.Equal(t, "unix", addr.Network())
	require.NotNil(t, addr.UnixAddr())
	assert.Equal(t, "/var/run/app.sock", addr.UnixAddr().Name)
}

func TestParseAbstract(t *testing.T) {
	addr, err := xnet.ParseAddr("unix://@abstract-name")
	if runtime.GOOS != "linux" {
		assert.ErrorIs(t, err, xnet.ErrAbstractUnsupported)
		return
	}

	require.NoError(t, err)
	assert.True(t, addr.IsUnix())
	assert.True(t, addr.IsAbstract())
	assert.Equal(t, "unix://@abstract-name", addr.String())
}

func TestAbstractConstructor(t *testing.T) {
	addr, err := xnet.Abstract("ctor-name")
	if runtime.GOOS != "linux" {
		assert.ErrorIs(t, err, xnet.ErrAbstractUnsupported)
		return
	}

	require.NoError(t, err)
	assert.True(t, addr.IsAbstract())
	assert.Equal(t, "unix://@ctor-name", addr.String())
}

func TestParseInvalidScheme(t *testing.T) {
	for _, text := range []string{
		"http://127.0.0.1:80",
		"127.0.0.1:80",
		"",
		"(unnamed unix socket)",
	} {
		_, err := xnet.ParseAddr(text)
		assert.ErrorIs(t, err, xnet.ErrInvalidScheme, "parse %q", text)
	}
}

func TestParseInvalidBody(t *testing.T) {
	for _, text := range []string{
		"tcp://127.0.0.1:70000",
		"tcp://127.0.0.1",
		"tcp://localhost:80",
		"tcp://::1:80",
		"unix:///tmp/bad\x00name",
	} {
		_, err := xnet.ParseAddr(text)
		assert.Error(t, err, "parse %q", text)
		assert.NotErrorIs(t, err, xnet.ErrInvalidScheme, "parse %q", text)
	}
}

func TestUnnamedFormatting(t *testing.T) {
	addr := xnet.FromUnixAddr(&net.UnixAddr{Net: "unix"})

	assert.True(t, addr.IsUnix())
	assert.True(t, addr.IsUnnamed())
	assert.Equal(t, "(unnamed unix socket)", addr.String())

	// The placeholder deliberately never parses back.
	_, err := xnet.ParseAddr(addr.String())
	assert.ErrorIs(t, err, xnet.ErrInvalidScheme)

	_, err = addr.MarshalText()
	assert.Error(t, err)
}

func TestConstructors(t *testing.T) {
	tcp := xnet.TCP(net.IPv4(10, 0, 0, 1), 9000)
	assert.Equal(t, "tcp://10.0.0.1:9000", tcp.String())

	path := xnet.Unix("/tmp/ctor.sock")
	assert.Equal(t, "unix:///tmp/ctor.sock", path.String())

	wrapped := xnet.FromTCPAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80})
	assert.Equal(t, "tcp://127.0.0.1:80", wrapped.String())
}

func TestTextCodec(t *testing.T) {
	var decoded struct {
		Addr xnet.Addr `json:"addr"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"addr":"tcp://10.1.2.3:443"}`), &decoded))
	assert.Equal(t, "tcp://10.1.2.3:443", decoded.Addr.String())

	encoded, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"addr":"tcp://10.1.2.3:443"}`, string(encoded))

	var bad struct {
		Addr xnet.Addr `json:"addr"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"addr":"ftp://nope"}`), &bad))
}
