package backend

import (
	"sort"
	"strings"

	"github.com/henkwiedig/msposd/internal/osd"
)

// SyncMode is how a profile paces Commit against the display.
type SyncMode int

// Sync modes. Pan flips between two virtual pages with FBIOPAN_DISPLAY,
// which the kernel latches at vblank; WaitVSync blocks on the
// FBIO_WAITFORVSYNC ioctl before copying; None just copies and relies on
// the tick rate.
const (
	SyncNone SyncMode = iota
	SyncPan
	SyncWaitVSync
)

// Profile captures one SoC family's overlay plane quirks. The fbdev driver
// on these boards is the vendor's, so device node, pixel format and sync
// behavior vary per family even though the ioctl surface is the same.
type Profile struct {
	Name        string
	Device      string
	Format      osd.PixelFormat
	StrideAlign int // row alignment in bytes the vendor blob expects
	Sync        SyncMode
	FPS         int
}

var profiles = map[string]Profile{
	"sigmastar": {
		Name:        "sigmastar",
		Device:      "/dev/fb0",
		Format:      osd.ARGB1555,
		StrideAlign: 16,
		Sync:        SyncPan,
		FPS:         30,
	},
	"hisilicon": {
		Name:        "hisilicon",
		Device:      "/dev/fb0",
		Format:      osd.ARGB1555,
		StrideAlign: 16,
		Sync:        SyncWaitVSync,
		FPS:         30,
	},
	"goke": {
		Name:        "goke",
		Device:      "/dev/fb0",
		Format:      osd.ARGB1555,
		StrideAlign: 16,
		Sync:        SyncWaitVSync,
		FPS:         30,
	},
	"rockchip": {
		Name:        "rockchip",
		Device:      "/dev/fb0",
		Format:      osd.ARGB8888,
		StrideAlign: 64,
		Sync:        SyncPan,
		FPS:         60,
	},
	"allwinner": {
		Name:        "allwinner",
		Device:      "/dev/fb0",
		Format:      osd.ARGB8888,
		StrideAlign: 4,
		Sync:        SyncNone,
		FPS:         30,
	},
}

// ProfileByName looks up a SoC profile.
func ProfileByName(name string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(name)]
	return p, ok
}

// ProfileNames returns the supported SoC family names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func profileNames() string {
	return strings.Join(ProfileNames(), ", ")
}

// alignUp rounds n up to the next multiple of align.
func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
