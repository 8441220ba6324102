package matrix

import (
	"fmt"

	"github.com/google/gousb"
)

const (
	// Relay matrix controller USB identifiers
	VendorIDOpenTrace  = 0x1209
	ProductIDMatrixCtl = 0x7A5E

	DefaultPacketSize = 64
)

// USBTransport talks to the relay matrix controller over two bulk endpoints.
type USBTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	packetSize int
}

// NewUSBTransport opens the controller with the given VID/PID.
func NewUSBTransport(vid, pid uint16) (*USBTransport, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("matrix: USB error: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("matrix: controller not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}

	// not supported on every platform
	_ = dev.SetAutoDetach(true)

	t := &USBTransport{
		ctx:        ctx,
		dev:        dev,
		packetSize: DefaultPacketSize,
	}
	if err := t.claimInterface(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return t, nil
}

func (t *USBTransport) claimInterface() error {
	cfg, err := t.dev.Config(1)
	if err != nil {
		return fmt.Errorf("matrix: failed to get config: %w", err)
	}
	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		return fmt.Errorf("matrix: failed to claim interface 0: %w", err)
	}
	t.cfg, t.intf = cfg, intf
	done := t.release

	var outAddr, inAddr int
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionOut && outAddr == 0:
			outAddr = ep.Number
		case ep.Direction == gousb.EndpointDirectionIn && inAddr == 0:
			inAddr = ep.Number
			t.packetSize = ep.MaxPacketSize
		}
	}
	if outAddr == 0 || inAddr == 0 {
		done()
		return fmt.Errorf("matrix: bulk endpoints not found")
	}

	if t.epOut, err = intf.OutEndpoint(outAddr); err != nil {
		done()
		return fmt.Errorf("matrix: failed to open OUT endpoint: %w", err)
	}
	if t.epIn, err = intf.InEndpoint(inAddr); err != nil {
		done()
		return fmt.Errorf("matrix: failed to open IN endpoint: %w", err)
	}
	return nil
}

// WriteRead implements Transport. Frames are padded to the packet size.
func (t *USBTransport) WriteRead(frame []byte) ([]byte, error) {
	if len(frame) > t.packetSize {
		return nil, fmt.Errorf("matrix: frame of %d bytes exceeds packet size %d", len(frame), t.packetSize)
	}
	packet := make([]byte, t.packetSize)
	copy(packet, frame)
	if _, err := t.epOut.Write(packet); err != nil {
		return nil, fmt.Errorf("matrix: USB write failed: %w", err)
	}

	resp := make([]byte, t.packetSize)
	n, err := t.epIn.Read(resp)
	if err != nil {
		return nil, fmt.Errorf("matrix: USB read failed: %w", err)
	}
	return resp[:n], nil
}

func (t *USBTransport) release() {
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.cfg != nil {
		t.cfg.Close()
		t.cfg = nil
	}
}

// Close releases USB resources.
func (t *USBTransport) Close() error {
	t.release()
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}

// DeviceInfo describes a connected controller.
type DeviceInfo struct {
	VID          uint16
	PID          uint16
	SerialNumber string
	Description  string
}

// EnumerateControllers lists connected controllers with the given VID/PID.
func EnumerateControllers(vid, pid uint16) ([]DeviceInfo, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == vid && uint16(desc.Product) == pid
	})
	if err != nil && err != gousb.ErrorAccess {
		return nil, fmt.Errorf("matrix: failed to enumerate devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(devs))
	for _, dev := range devs {
		serial, _ := dev.SerialNumber()
		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()
		devices = append(devices, DeviceInfo{
			VID:          uint16(dev.Desc.Vendor),
			PID:          uint16(dev.Desc.Product),
			SerialNumber: serial,
			Description:  fmt.Sprintf("%s %s", manufacturer, product),
		})
		dev.Close()
	}
	return devices, nil
}
