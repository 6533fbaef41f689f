//go:build linux

package backend

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/henkwiedig/msposd/internal/logging"
	"github.com/henkwiedig/msposd/internal/osd"
)

// fbdev ioctls, from linux/fb.h.
const (
	fbioGetVScreenInfo = 0x4600
	fbioPutVScreenInfo = 0x4601
	fbioGetFScreenInfo = 0x4602
	fbioPanDisplay     = 0x4606
	fbioWaitForVSync   = 0x40044620
)

type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

type fbVarScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          fbBitfield
	Green        fbBitfield
	Blue         fbBitfield
	Transp       fbBitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

type fbFixScreenInfo struct {
	ID           [16]byte
	SMemStart    uintptr
	SMemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MMIOStart    uintptr
	MMIOLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// FBDev drives a vendor fbdev overlay plane parameterized by a SoC profile.
// Frames are composed into a shadow canvas and copied into the mapped
// plane on Commit; copying straight into video memory would tear.
type FBDev struct {
	profile  Profile
	file     *os.File
	mem      []byte
	geom     osd.Geometry
	interval time.Duration
	shadow   *osd.Canvas

	// pan double buffering
	pages    int
	page     int
	pageSize int

	vinfo fbVarScreenInfo
}

func newFBDev(profile Profile, cfg Config) (*FBDev, error) {
	log := logging.GetLogger("backend")

	device := profile.Device
	if cfg.Device != "" {
		device = cfg.Device
	}

	file, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, &InitError{Backend: profile.Name, Call: "open " + device, Err: err}
	}

	d := &FBDev{profile: profile, file: file}

	if err := d.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&d.vinfo), "FBIOGET_VSCREENINFO"); err != nil {
		file.Close()
		return nil, err
	}

	wantBPP := uint32(profile.Format.BytesPerPixel() * 8)
	wantPages := 1
	if profile.Sync == SyncPan {
		wantPages = 2
	}
	if d.vinfo.BitsPerPixel != wantBPP || int(d.vinfo.YResVirtual) < int(d.vinfo.YRes)*wantPages {
		d.vinfo.BitsPerPixel = wantBPP
		d.vinfo.XResVirtual = d.vinfo.XRes
		d.vinfo.YResVirtual = d.vinfo.YRes * uint32(wantPages)
		d.vinfo.XOffset = 0
		d.vinfo.YOffset = 0
		if err := d.ioctl(fbioPutVScreenInfo, unsafe.Pointer(&d.vinfo), "FBIOPUT_VSCREENINFO"); err != nil {
			file.Close()
			return nil, err
		}
		if err := d.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&d.vinfo), "FBIOGET_VSCREENINFO"); err != nil {
			file.Close()
			return nil, err
		}
	}
	if d.vinfo.BitsPerPixel != wantBPP {
		file.Close()
		return nil, &InitError{
			Backend: profile.Name,
			Call:    "FBIOPUT_VSCREENINFO",
			Err:     fmt.Errorf("plane stuck at %d bpp, need %d (%s)", d.vinfo.BitsPerPixel, wantBPP, profile.Format),
		}
	}

	var finfo fbFixScreenInfo
	if err := d.ioctl(fbioGetFScreenInfo, unsafe.Pointer(&finfo), "FBIOGET_FSCREENINFO"); err != nil {
		file.Close()
		return nil, err
	}

	stride := int(finfo.LineLength)
	if stride == 0 {
		stride = alignUp(int(d.vinfo.XRes)*profile.Format.BytesPerPixel(), profile.StrideAlign)
	}
	d.geom = osd.Geometry{
		Width:  int(d.vinfo.XRes),
		Height: int(d.vinfo.YRes),
		Stride: stride,
		Format: profile.Format,
	}
	d.pageSize = stride * d.geom.Height

	d.pages = 1
	if profile.Sync == SyncPan && int(d.vinfo.YResVirtual) >= d.geom.Height*2 &&
		int(finfo.SMemLen) >= d.pageSize*2 {
		d.pages = 2
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, int(finfo.SMemLen),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, &InitError{Backend: profile.Name, Call: "mmap", Err: err}
	}
	d.mem = mem
	d.shadow = osd.NewCanvas(d.geom)

	fps := profile.FPS
	if cfg.FPS > 0 {
		fps = cfg.FPS
	}
	d.interval = time.Second / time.Duration(fps)

	log.Info("framebuffer plane up",
		"profile", profile.Name,
		"device", device,
		"geometry", fmt.Sprintf("%dx%d", d.geom.Width, d.geom.Height),
		"format", d.geom.Format.String(),
		"stride", stride,
		"pages", d.pages)
	return d, nil
}

// Geometry reports the plane geometry as the kernel granted it.
func (d *FBDev) Geometry() osd.Geometry { return d.geom }

// FrameInterval reports the profile's output frame period.
func (d *FBDev) FrameInterval() time.Duration { return d.interval }

// Acquire returns the shadow canvas for the next frame.
func (d *FBDev) Acquire() *osd.Canvas { return d.shadow }

// Commit copies the canvas into the plane and performs the profile's sync
// step.
func (d *FBDev) Commit(c *osd.Canvas) error {
	if d.profile.Sync == SyncWaitVSync {
		arg := uint32(0)
		// Vendor kernels without the ioctl just fall through to the copy.
		_ = d.ioctl(fbioWaitForVSync, unsafe.Pointer(&arg), "FBIO_WAITFORVSYNC")
	}

	back := 0
	if d.pages == 2 {
		back = 1 - d.page
	}
	copy(d.mem[back*d.pageSize:], c.Pix[:d.pageSize])

	if d.pages == 2 {
		d.vinfo.YOffset = uint32(back * d.geom.Height)
		if err := d.ioctl(fbioPanDisplay, unsafe.Pointer(&d.vinfo), "FBIOPAN_DISPLAY"); err != nil {
			return err
		}
		d.page = back
	}
	return nil
}

// Close blanks the plane and releases the mapping. Leaving the last HUD
// frame burned into the overlay after exit looks like a hang to the pilot.
func (d *FBDev) Close() error {
	if d.mem != nil {
		for i := range d.mem {
			d.mem[i] = 0
		}
		if err := unix.Munmap(d.mem); err != nil {
			d.file.Close()
			return fmt.Errorf("munmap %s: %w", d.profile.Name, err)
		}
		d.mem = nil
	}
	return d.file.Close()
}

func (d *FBDev) ioctl(req uintptr, arg unsafe.Pointer, call string) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.file.Fd(), req, uintptr(arg))
	if errno != 0 {
		return &InitError{Backend: d.profile.Name, Call: call, Err: errno}
	}
	return nil
}
