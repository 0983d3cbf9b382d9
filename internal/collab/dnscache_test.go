package collab

import (
	"net"
	"testing"
)

func TestCachingDialerCachesSuccessfulResolution(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	dial, err := newCachingDialer(16)
	if err != nil {
		t.Fatalf("newCachingDialer: %v", err)
	}

	addr := ln.Addr().String()
	for i := 0; i < 3; i++ {
		conn, err := dial("tcp", addr)
		if err != nil {
			t.Fatalf("dial #%d: %v", i, err)
		}
		conn.Close()
	}
}

func TestCachingDialerCachesFailedResolution(t *testing.T) {
	dial, err := newCachingDialer(16)
	if err != nil {
		t.Fatalf("newCachingDialer: %v", err)
	}

	if _, err := dial("tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected dial to a closed port to fail")
	}
	if _, err := dial("tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected cached failed resolution to still return an error")
	}
}
