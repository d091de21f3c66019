package device

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

const (
	platformBufferSize = 100
	deviceBufferSize   = 100
	dataBufferSize     = 1024
)

// Information about a system's opencl platform and supported devices.
type PlatformInfo struct {
	Profile    string
	Version    string
	Name       string
	Vendor     string
	Extensions string
	Devices    []*Device
}

func (pl PlatformInfo) String() string {
	var buf bytes.Buffer

	buf.WriteString(
		fmt.Sprintf(
			"Version:    %s\nName:       %s\nVendor:     %s\nExtensions: %s\nDevices:\n",
			pl.Version,
			pl.Name,
			pl.Vendor,
			pl.Extensions,
		),
	)

	for dIdx, d := range pl.Devices {
		buf.WriteString(fmt.Sprintf("  Device %02d:\n", dIdx))
		buf.WriteString(indentRegex.ReplaceAllString(d.String(), "    "))
		buf.WriteString("\n\n")
	}

	return buf.String()
}

// Get information about supported opencl platforms and devices.
func GetPlatformInfo() ([]PlatformInfo, error) {

	pids := make([]cl.PlatformID, platformBufferSize)
	data := make([]byte, dataBufferSize)
	var dataLen uint64

	devices := make([]cl.DeviceId, deviceBufferSize)
	deviceCount := uint32(0)

	pidCount := uint32(0)
	cl.GetPlatformIDs(uint32(len(pids)), &pids[0], &pidCount)

	infoList := make([]PlatformInfo, int(pidCount))
	for pIdx := 0; pIdx < int(pidCount); pIdx++ {
		pid := pids[pIdx]
		info := &infoList[pIdx]

		cl.GetPlatformInfo(pid, cl.PLATFORM_PROFILE, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Profile = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_VERSION, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Version = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_NAME, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Name = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_VENDOR, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Vendor = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_EXTENSIONS, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Extensions = trimInfo(data, dataLen)

		appendDevices := func(devType DeviceType) {
			for dIdx := 0; dIdx < int(deviceCount); dIdx++ {
				dataLen = 0
				cl.GetDeviceInfo(devices[dIdx], cl.DEVICE_NAME, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
				info.Devices = append(info.Devices, &Device{
					Name: trimInfo(data, dataLen),
					Id:   devices[dIdx],
					Type: devType,
				})
			}
		}

		deviceCount = 0
		cl.GetDeviceIDs(pid, cl.DEVICE_TYPE_CPU, uint32(deviceBufferSize), &devices[0], &deviceCount)
		appendDevices(CpuDevice)

		deviceCount = 0
		cl.GetDeviceIDs(pid, cl.DEVICE_TYPE_GPU, uint32(deviceBufferSize), &devices[0], &deviceCount)
		appendDevices(GpuDevice)

		// Enumerate speed for all platform devices
		for _, dev := range info.Devices {
			err := dev.detectSpeed()
			if err != nil {
				return nil, err
			}
		}
	}

	return infoList, nil
}

// Convert a null-terminated info value to a string.
func trimInfo(data []byte, dataLen uint64) string {
	if dataLen == 0 || dataLen > uint64(len(data)) {
		return ""
	}
	return string(data[0 : dataLen-1])
}

// Scan all available opencl platforms and select devices whose type matches
// typeMask, whose name contains matchName (if not empty) and whose name does
// not contain any of the blacklisted values.
func SelectDevices(typeMask DeviceType, matchName string, blacklist ...string) ([]*Device, error) {
	platforms, err := GetPlatformInfo()
	if err != nil {
		return nil, err
	}
	list := make([]*Device, 0)
	for _, p := range platforms {
		for _, d := range p.Devices {
			// Match type
			if d.Type&typeMask != d.Type {
				continue
			}

			// Match name
			if matchName != "" && !strings.Contains(d.Name, matchName) {
				continue
			}

			if isBlacklisted(d.Name, blacklist) {
				continue
			}

			list = append(list, d)
		}
	}
	return list, nil
}

func isBlacklisted(name string, blacklist []string) bool {
	for _, value := range blacklist {
		if value != "" && strings.Contains(name, value) {
			return true
		}
	}
	return false
}
