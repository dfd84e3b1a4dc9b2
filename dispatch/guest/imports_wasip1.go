//go:build wasip1

package guest

import "unsafe"

//go:wasmimport callgen input_len
func inputLen() uint32

//go:wasmimport callgen input_read
func inputRead(ptr unsafe.Pointer)

//go:wasmimport callgen state_len
func stateLen() int32

//go:wasmimport callgen state_read
func stateRead(ptr unsafe.Pointer)

//go:wasmimport callgen state_write
func stateWrite(ptr unsafe.Pointer, n uint32)

//go:wasmimport callgen output_write
func outputWrite(ptr unsafe.Pointer, n uint32)

//go:wasmimport callgen abort
func abort(ptr unsafe.Pointer, n uint32)

type wasmABI struct{}

var imports abi = wasmABI{}

func (wasmABI) inputLen() uint32     { return inputLen() }
func (wasmABI) inputRead(buf []byte) { inputRead(unsafe.Pointer(unsafe.SliceData(buf))) }
func (wasmABI) stateLen() int32      { return stateLen() }
func (wasmABI) stateRead(buf []byte) { stateRead(unsafe.Pointer(unsafe.SliceData(buf))) }

func (wasmABI) stateWrite(data []byte) {
	stateWrite(unsafe.Pointer(unsafe.SliceData(data)), uint32(len(data)))
}

func (wasmABI) outputWrite(data []byte) {
	outputWrite(unsafe.Pointer(unsafe.SliceData(data)), uint32(len(data)))
}

func (wasmABI) abort(msg string) {
	abort(unsafe.Pointer(unsafe.StringData(msg)), uint32(len(msg)))
}
