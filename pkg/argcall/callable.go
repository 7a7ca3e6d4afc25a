// Package argcall holds the runtime contracts implemented by code that the
// argcall generator writes.
//
// A type annotated with
//
//	//argcall::callable -Output=int
//
// gets a Call method returning int. For sealed interfaces (sum types) the
// generator also writes a dispatch function, CallShape(v Shape) int, with one
// type-switch arm per variant.
package argcall

import "sync"

// Callable is implemented by values that produce an O when called.
// Generated for //argcall::callable.
type Callable[O any] interface {
	Call() O
}

// CallableMut is the pointer-receiver flavor. Bound functions receive
// pointers to the member's fields and may modify them.
// Generated for //argcall::callable_mut.
type CallableMut[O any] interface {
	CallMut() O
}

// CallableOnce is the flavor for values meant to be called a single time.
// Generated for //argcall::callable_once; see Once.
type CallableOnce[O any] interface {
	CallOnce() O
}

// Func adapts an ordinary function to Callable.
type Func[O any] func() O

// Call calls f().
func (f Func[O]) Call() O {
	return f()
}

// Call invokes c and returns its result.
func Call[O any](c Callable[O]) O {
	return c.Call()
}

// CallAll invokes every callable in order and collects the results.
func CallAll[O any](cs ...Callable[O]) []O {
	out := make([]O, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Call())
	}
	return out
}

// Once returns a function that calls c.CallOnce the first time it is invoked
// and returns the same result on every later invocation. It is safe for
// concurrent use.
func Once[O any](c CallableOnce[O]) func() O {
	return sync.OnceValue(c.CallOnce)
}
