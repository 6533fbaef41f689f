package source

import (
	"fmt"
	"net"
)

// TCP dials an MSP bridge such as a serial-to-TCP forwarder on the air
// unit. The connection dropping closes the byte channel, which the
// scheduler sees as link loss.
type TCP struct {
	*pump
	conn net.Conn
}

func openTCP(cfg Config) (*TCP, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("tcp source needs an address")
	}
	conn, err := net.Dial("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Address, err)
	}

	t := &TCP{pump: newPump("tcp:"+cfg.Address, conn), conn: conn}
	go t.run(conn)
	return t, nil
}

// UDP listens for MSP datagrams; each datagram is one chunk. Senders need
// no handshake, so this survives the sender rebooting.
type UDP struct {
	*pump
	conn *net.UDPConn
}

func openUDP(cfg Config) (*UDP, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("udp source needs an address")
	}
	addr, err := net.ResolveUDPAddr("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Address, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Address, err)
	}

	u := &UDP{pump: newPump("udp:"+cfg.Address, conn), conn: conn}
	go u.run(conn)
	return u, nil
}
