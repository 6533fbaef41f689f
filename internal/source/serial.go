package source

import (
	"fmt"

	"go.bug.st/serial"
)

// Serial reads MSP from a UART, the normal flight-controller hookup.
type Serial struct {
	*pump
	port serial.Port
}

func openSerial(cfg Config) (*Serial, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial source needs a device")
	}
	baud := cfg.Baud
	if baud == 0 {
		baud = 115200
	}

	port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Device, err)
	}

	s := &Serial{pump: newPump("serial:"+cfg.Device, port), port: port}
	go s.run(port)
	return s, nil
}
