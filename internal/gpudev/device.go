// Package gpudev stands up a wgpu device for displays whose host does not
// share one. The device implements gpucontext.DeviceProvider, so the
// display can hand it to WebGL blocks exactly like a host-shared handle.
package gpudev

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gopix/strata"
)

// ErrNoGPU is returned when no suitable GPU adapter is available.
var ErrNoGPU = errors.New("gpudev: no GPU adapter available")

// Device owns the GPU resources for one display: instance, adapter,
// logical device and queue. It must be Closed when the display is
// disposed.
type Device struct {
	mu sync.Mutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	info gputypes.AdapterInfo

	initialized bool
}

// Open creates and initializes a GPU device.
// Returns ErrNoGPU (wrapped) if no adapter can be acquired.
func Open(label string) (*Device, error) {
	d := &Device{}
	if err := d.init(label); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init(label string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	desc := &gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	}
	d.instance = core.NewInstance(desc)

	adapterID, err := d.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	d.adapter = adapterID

	if info, err := core.GetAdapterInfo(adapterID); err == nil {
		d.info = info
		strata.Logger().Info("gpudev: adapter selected",
			"name", info.Name, "backend", info.Backend.String())
	}

	deviceID, err := core.RequestDevice(adapterID, &gputypes.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   gputypes.DefaultLimits(),
	})
	if err != nil {
		return fmt.Errorf("gpudev: device creation failed: %w", err)
	}
	d.device = deviceID

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = core.DeviceDrop(deviceID)
		return fmt.Errorf("gpudev: queue retrieval failed: %w", err)
	}
	d.queue = queueID

	d.initialized = true
	return nil
}

// DeviceID returns the wgpu device identifier.
func (d *Device) DeviceID() core.DeviceID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.device
}

// QueueID returns the wgpu queue identifier.
func (d *Device) QueueID() core.QueueID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue
}

// Device returns the wgpu device identifier as an opaque
// gpucontext.Device.
func (d *Device) Device() gpucontext.Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil
	}
	return d.device
}

// Queue returns the wgpu queue identifier as an opaque gpucontext.Queue.
func (d *Device) Queue() gpucontext.Queue {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil
	}
	return d.queue
}

// Adapter returns the wgpu adapter identifier as an opaque
// gpucontext.Adapter.
func (d *Device) Adapter() gpucontext.Adapter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil
	}
	return d.adapter
}

// SurfaceFormat returns TextureFormatUndefined: the device is headless,
// no surface is attached.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports the selected adapter's name and type.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	return gpucontext.AdapterInfo{
		Name: d.info.Name,
		Type: adapterTypeOf(d.info.DeviceType),
	}
}

// adapterTypeOf maps a wgpu device type onto the gpucontext adapter
// classification.
func adapterTypeOf(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeVirtualGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// Close releases all GPU resources in reverse order of creation.
// Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return
	}

	if !d.device.IsZero() {
		if err := core.DeviceDrop(d.device); err != nil {
			strata.Logger().Warn("gpudev: error releasing device", "err", err)
		}
		d.device = core.DeviceID{}
	}

	if !d.adapter.IsZero() {
		if err := core.AdapterDrop(d.adapter); err != nil {
			strata.Logger().Warn("gpudev: error releasing adapter", "err", err)
		}
		d.adapter = core.AdapterID{}
	}

	d.instance = nil
	d.queue = core.QueueID{}
	d.initialized = false
}

var _ gpucontext.DeviceProvider = (*Device)(nil)
