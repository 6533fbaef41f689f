package source

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func collect(t *testing.T, s Source) []byte {
	t.Helper()
	var out []byte
	timeout := time.After(2 * time.Second)
	for {
		select {
		case chunk, ok := <-s.Bytes():
			if !ok {
				return out
			}
			out = append(out, chunk...)
		case <-timeout:
			t.Fatal("timed out draining source")
		}
	}
}

func TestFileReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	want := bytes.Repeat([]byte{0x24, 0x4d, 0x3e, 0x00, 0x65, 0x65}, 100)
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(Config{Kind: "file", Path: path, ChunkSize: 64})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got := collect(t, s); !bytes.Equal(got, want) {
		t.Errorf("replayed %d bytes, want %d, content mismatch", len(got), len(want))
	}
}

func TestFileReplayPaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, make([]byte, 40), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(Config{Kind: "file", Path: path, ChunkSize: 10, Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	start := time.Now()
	got := collect(t, s)
	if len(got) != 40 {
		t.Errorf("got %d bytes, want 40", len(got))
	}
	// Four chunks with three inter-chunk waits
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("replay finished in %v, pacing not applied", elapsed)
	}
}

func TestFileCloseUnblocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, make([]byte, 1<<20), 0o644); err != nil {
		t.Fatal(err)
	}

	// Nothing drains the channel, so the replay goroutine is parked on a
	// send; Close must still return.
	s, err := Open(Config{Kind: "file", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a full channel")
	}
}

func TestTCPSource(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	payload := []byte{0x24, 0x58, 0x3e, 0x00, 0x08, 0x01, 0x06, 0x00}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write(payload)
		conn.Close()
	}()

	s, err := Open(Config{Kind: "tcp", Address: ln.Addr().String()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got := collect(t, s); !bytes.Equal(got, payload) {
		t.Errorf("got % x, want % x", got, payload)
	}
}

func TestUDPSource(t *testing.T) {
	s, err := Open(Config{Kind: "udp", Address: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	addr := s.(*UDP).conn.LocalAddr().String()
	conn, err := net.Dial("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	payload := []byte{0x24, 0x4d, 0x3e, 0x02, 0x6c}
	if _, err := conn.Write(payload); err != nil {
		t.Fatal(err)
	}

	select {
	case chunk := <-s.Bytes():
		if !bytes.Equal(chunk, payload) {
			t.Errorf("got % x, want % x", chunk, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("datagram never arrived")
	}
}

func TestOpenValidation(t *testing.T) {
	tests := []Config{
		{Kind: "laser"},
		{Kind: "serial"},
		{Kind: "tcp"},
		{Kind: "udp"},
		{Kind: "websocket"},
		{Kind: "file"},
	}
	for _, cfg := range tests {
		if _, err := Open(cfg); err == nil {
			t.Errorf("Open(%+v) succeeded, want error", cfg)
		}
	}
}
