//go:build !wasip1

package guest

// Outside a wasm module there is no host to import from.
var imports abi = unavailable{}

type unavailable struct{}

func (unavailable) inputLen() uint32   { panic(msgUnavailable) }
func (unavailable) inputRead([]byte)   { panic(msgUnavailable) }
func (unavailable) stateLen() int32    { panic(msgUnavailable) }
func (unavailable) stateRead([]byte)   { panic(msgUnavailable) }
func (unavailable) stateWrite([]byte)  { panic(msgUnavailable) }
func (unavailable) outputWrite([]byte) { panic(msgUnavailable) }
func (unavailable) abort(msg string)   { panic(msgUnavailable) }

const msgUnavailable = "guest: callgen host imports are only available under wasip1"
