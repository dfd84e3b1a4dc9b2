package dispatch

// Region stands in for a lifetime parameter. Go has no lifetimes, so region
// parameters only keep generated type identities aligned with the
// interface's declared parameter list.
type Region interface {
	RegionName() string
}

// Static is the only region callgen instantiates.
type Static struct{}

func (Static) RegionName() string { return "static" }

// Const is the constraint for a const parameter of type T. A const
// parameter is instantiated with a type whose Value method returns the
// constant.
type Const[T any] interface {
	Value() T
}

// True and False instantiate Const[bool].
type (
	True  struct{}
	False struct{}
)

func (True) Value() bool  { return true }
func (False) Value() bool { return false }

// ValueOf returns the constant carried by the const parameter C.
func ValueOf[T any, C Const[T]]() T {
	var c C
	return c.Value()
}

// Unit is the return type of methods that return nothing. It encodes as
// null under every format.
type Unit struct{}

func (Unit) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (*Unit) UnmarshalJSON([]byte) error { return nil }

func (Unit) MarshalMsgpack() ([]byte, error) { return []byte{0xc0}, nil }

func (*Unit) UnmarshalMsgpack([]byte) error { return nil }
