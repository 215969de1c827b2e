package xnet_test

import (
	"context"
	"fmt"
	"io"

	"github.com/perlin-network/xnet"
)

// This example binds a listener to an ephemeral TCP port, dials it back
// through the address the listener reports, and echoes a message through an
// owned split pair.
func Example() {
	ctx := context.Background()

	ln, err := xnet.Listen(ctx, "tcp://127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	defer ln.Close()

	go func() {
		conn, _, err := ln.Accept(ctx)
		if err != nil {
			return
		}
		defer conn.Close()

		io.Copy(conn, conn)
	}()

	conn, err := xnet.Dial(ctx, ln.Addr())
	if err != nil {
		panic(err)
	}

	rh, wh := conn.IntoSplit()

	if _, err := wh.Write([]byte("hello over tcp")); err != nil {
		panic(err)
	}
	wh.Close()

	echoed, err := io.ReadAll(rh)
	if err != nil {
		panic(err)
	}
	rh.Close()

	fmt.Println(string(echoed))
	// Output: hello over tcp
}
