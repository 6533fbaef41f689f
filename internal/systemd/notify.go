// Package systemd integrates the service lifecycle with systemd: readiness
// notification and watchdog keepalives. Everything here is a no-op when the
// process is not running under a systemd unit.
package systemd

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/henkwiedig/msposd/internal/logging"
)

// NotifyReady reports the render loop as up (Type=notify units).
func NotifyReady() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.GetLogger("systemd").Debug("sd_notify ready failed", "error", err)
	}
}

// NotifyStopping reports an orderly shutdown in progress.
func NotifyStopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logging.GetLogger("systemd").Debug("sd_notify stopping failed", "error", err)
	}
}

// StartWatchdog feeds the systemd watchdog at half the configured interval
// until ctx is cancelled. Returns immediately if no watchdog is configured.
func StartWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	log := logging.GetLogger("systemd")
	log.Info("systemd watchdog armed", "interval", interval)

	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
					log.Warn("watchdog keepalive failed", "error", err)
				}
			}
		}
	}()
}
