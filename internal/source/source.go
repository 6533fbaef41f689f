// Package source provides the telemetry byte channels the scheduler reads
// from: serial ports, UDP/TCP sockets, websockets and file replay. A source
// owns one reader goroutine that pushes chunks into a bounded channel; the
// channel closes when the stream ends, which the scheduler treats as link
// loss.
package source

import (
	"fmt"
	"io"
	"time"

	"github.com/henkwiedig/msposd/internal/logging"
)

// Source is one telemetry byte stream.
type Source interface {
	// Bytes delivers raw chunks in arrival order. The channel closes when
	// the stream ends or the source is closed. Chunk boundaries carry no
	// meaning; the decoder is chunk-invariant.
	Bytes() <-chan []byte

	// Close stops the reader and releases the underlying device or socket.
	Close() error
}

// Config selects and parameterizes a source.
type Config struct {
	// Kind is serial, udp, tcp, websocket or file.
	Kind string

	// Device and Baud apply to serial sources.
	Device string
	Baud   int

	// Address is host:port for tcp, listen address for udp.
	Address string

	// URL applies to websocket sources.
	URL string

	// Path applies to file replay.
	Path string

	// ChunkSize and Interval pace file replay. Interval 0 replays as fast
	// as the scheduler drains.
	ChunkSize int
	Interval  time.Duration
}

// Open creates the source cfg describes.
func Open(cfg Config) (Source, error) {
	switch cfg.Kind {
	case "serial":
		return openSerial(cfg)
	case "udp":
		return openUDP(cfg)
	case "tcp":
		return openTCP(cfg)
	case "websocket":
		return openWebsocket(cfg)
	case "file":
		return openFile(cfg)
	}
	return nil, fmt.Errorf("unknown source kind %q (have serial, udp, tcp, websocket, file)", cfg.Kind)
}

const readBufSize = 4096

// pump is the shared reader-goroutine scaffolding. It reads chunks from rc
// into the channel until read error or Close.
type pump struct {
	ch     chan []byte
	quit   chan struct{}
	done   chan struct{}
	closer io.Closer
	name   string
}

func newPump(name string, closer io.Closer) *pump {
	return &pump{
		ch:     make(chan []byte, 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		closer: closer,
		name:   name,
	}
}

func (p *pump) Bytes() <-chan []byte { return p.ch }

// Close unblocks the reader, whether it is stuck in a read or in a channel
// send, then waits for it to drain out.
func (p *pump) Close() error {
	close(p.quit)
	err := p.closer.Close()
	<-p.done
	return err
}

// run reads until error. Closing the underlying stream surfaces here as a
// read error, which ends the loop.
func (p *pump) run(r io.Reader) {
	log := logging.GetLogger("source")
	defer close(p.done)
	defer close(p.ch)

	for {
		buf := make([]byte, readBufSize)
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case p.ch <- buf[:n]:
			case <-p.quit:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Debug("source reader stopped", "source", p.name, "error", err)
			}
			return
		}
	}
}
