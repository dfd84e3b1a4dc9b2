// Package guest runs entry points inside a WebAssembly module. The host
// side of the ABI lives in wasmhost; both agree on the "callgen" import
// module:
//
//	input_len() i32                 length of the call payload
//	input_read(ptr i32)             copy the payload to ptr
//	state_len() i32                 length of the persisted receiver, -1 if none
//	state_read(ptr i32)             copy the persisted receiver to ptr
//	state_write(ptr i32, len i32)   stage a new receiver
//	output_write(ptr i32, len i32)  hand over the result payload
//	abort(ptr i32, len i32)         trap with a message, discarding staged state
//
// Generated wasip1 export files call Run from each exported function.
package guest

import (
	"github.com/teranos/callgen/dispatch"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/format"
)

// StateFormat encodes the persisted receiver. The host stores it opaquely.
var StateFormat format.Format = format.JSON

type abi interface {
	inputLen() uint32
	inputRead(buf []byte)
	stateLen() int32
	stateRead(buf []byte)
	stateWrite(data []byte)
	outputWrite(data []byte)
	abort(msg string)
}

// Run executes entry for one host call and, when the call mutated the
// receiver, stages the new state.
func Run(name string, entry dispatch.EntryPoint) {
	run(imports, name, entry)
}

func run(a abi, name string, entry dispatch.EntryPoint) {
	h := &host{abi: a}
	cc := dispatch.NewCallContext(h, name)
	entry(cc)
	if cc.Err() != nil {
		return
	}
	v, ok := cc.PersistableState()
	if !ok {
		return
	}
	data, err := StateFormat.Marshal(v)
	if err != nil {
		h.Abort(errors.Wrapf(err, "encode state after %s", name))
		return
	}
	a.stateWrite(data)
}

type host struct {
	abi abi
}

func (h *host) Input() ([]byte, error) {
	n := h.abi.inputLen()
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	h.abi.inputRead(buf)
	return buf, nil
}

func (h *host) LoadState(dst any) error {
	n := h.abi.stateLen()
	if n < 0 {
		return nil
	}
	buf := make([]byte, n)
	if n > 0 {
		h.abi.stateRead(buf)
	}
	return StateFormat.Unmarshal(buf, dst)
}

func (h *host) Output(data []byte) error {
	h.abi.outputWrite(data)
	return nil
}

func (h *host) Abort(err error) {
	h.abi.abort(err.Error())
}
