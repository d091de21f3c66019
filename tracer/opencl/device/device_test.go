//go:build opencl

package device

import (
	"testing"
)

const testProgram = `
__kernel void square(__global const int *in, __global int *out, const uint count) {
	uint id = get_global_id(0);
	uint row = get_global_id(1);
	uint index = row * count + id;
	out[index] = in[index] * in[index];
}
`

func createTestDevice(t *testing.T) *Device {
	devList, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no opencl devices available; check that opencl drivers are installed")
	}

	dev := devList[0]
	if err = dev.Init(testProgram, ""); err != nil {
		t.Fatalf("error initializing device '%s': %v", dev.Name, err)
	}
	return dev
}

func TestSelectDevicesBlacklist(t *testing.T) {
	devList, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no opencl devices available")
	}

	filtered, err := SelectDevices(AllDevices, "", devList[0].Name)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range filtered {
		if d.Name == devList[0].Name {
			t.Fatalf("expected blacklisted device '%s' to be filtered", d.Name)
		}
	}
}

func TestKernelErrors(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	if _, err := dev.Kernel("foo"); err == nil {
		t.Fatal("expected to get an error while trying to load an unknown kernel")
	}
}

func TestBufferBounds(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	buf := dev.Buffer("test")
	defer buf.Release()
	if err := buf.Allocate(16); err != nil {
		t.Fatal(err)
	}

	if err := buf.WriteData(make([]int32, 4), 4); err == nil {
		t.Fatal("expected out of bounds write to fail")
	}
	if err := buf.ReadData(0, 0, 16, make([]int32, 2)); err == nil {
		t.Fatal("expected read into a small host buffer to fail")
	}
}

func TestKernelExec2D(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	kernel, err := dev.Kernel("square")
	if err != nil {
		t.Fatal(err)
	}
	defer kernel.Release()

	const rowLen, rows = 8, 4
	dataIn := make([]int32, rowLen*rows)
	dataOut := make([]int32, rowLen*rows)
	for i := range dataIn {
		dataIn[i] = int32(i)
	}

	bufIn := dev.Buffer("in")
	defer bufIn.Release()
	bufOut := dev.Buffer("out")
	defer bufOut.Release()
	if err = bufIn.Allocate(len(dataIn) * 4); err != nil {
		t.Fatal(err)
	}
	if err = bufIn.WriteData(dataIn, 0); err != nil {
		t.Fatal(err)
	}
	if err = bufOut.Allocate(len(dataOut) * 4); err != nil {
		t.Fatal(err)
	}

	if err = kernel.SetArgs(bufIn, bufOut, uint32(rowLen)); err != nil {
		t.Fatal(err)
	}
	if _, err = kernel.Exec2D(0, 0, rowLen, rows, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err = bufOut.ReadData(0, 0, 0, dataOut); err != nil {
		t.Fatal(err)
	}

	for i, v := range dataOut {
		if exp := int32(i * i); v != exp {
			t.Fatalf("expected out[%d] to be %d; got %d", i, exp, v)
		}
	}
}
