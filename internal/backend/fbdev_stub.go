//go:build !linux

package backend

import "fmt"

// Hardware overlay planes are Linux fbdev devices; other platforms only get
// the native backend.
func newFBDev(profile Profile, cfg Config) (Backend, error) {
	return nil, &InitError{
		Backend: profile.Name,
		Call:    "open",
		Err:     fmt.Errorf("fbdev backends require linux"),
	}
}
