package source

import (
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/henkwiedig/msposd/internal/logging"
)

// Websocket reads MSP from a websocket endpoint, as some WiFi air units
// expose instead of a raw TCP bridge. Each binary message is one chunk.
type Websocket struct {
	*pump
	conn *websocket.Conn
}

func openWebsocket(cfg Config) (*Websocket, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("websocket source needs a url")
	}
	conn, _, err := websocket.DefaultDialer.Dial(cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	w := &Websocket{pump: newPump("ws:"+cfg.URL, conn), conn: conn}
	go w.runMessages()
	return w, nil
}

// runMessages is the websocket flavor of pump.run: message reads instead
// of stream reads.
func (w *Websocket) runMessages() {
	log := logging.GetLogger("source")
	defer close(w.done)
	defer close(w.ch)

	for {
		kind, data, err := w.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("source reader stopped", "source", w.name, "error", err)
			}
			return
		}
		if kind != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		select {
		case w.ch <- data:
		case <-w.quit:
			return
		}
	}
}
