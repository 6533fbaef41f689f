package source

import (
	"fmt"
	"os"
	"time"
)

// File replays a captured MSP stream, paced so the scheduler sees it as a
// live link. Interval 0 delivers the whole capture as fast as it drains,
// which one-shot rendering uses.
type File struct {
	*pump
	f *os.File
}

func openFile(cfg Config) (*File, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file source needs a path")
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}

	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = 256
	}

	fs := &File{pump: newPump("file:"+cfg.Path, f), f: f}
	go fs.replay(chunk, cfg.Interval)
	return fs, nil
}

func (fs *File) replay(chunk int, interval time.Duration) {
	defer close(fs.done)
	defer close(fs.ch)

	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		buf := make([]byte, chunk)
		n, err := fs.f.Read(buf)
		if n > 0 {
			select {
			case fs.ch <- buf[:n]:
			case <-fs.quit:
				return
			}
		}
		if err != nil {
			return
		}
		if ticker != nil {
			select {
			case <-ticker.C:
			case <-fs.quit:
				return
			}
		}
	}
}
