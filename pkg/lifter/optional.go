package lifter

import (
	"github.com/goccy/go-json"
)

// Optional holds a value that may be absent. An absent value is never the zero value of T.
// Optional is comparable whenever T is, so records built from it can be compared with ==.
type Optional[T comparable] struct {
	value T
	ok    bool
}

// Some returns a present Optional holding v.
func Some[T comparable](v T) (o Optional[T]) {
	o = Optional[T]{value: v, ok: true}
	return o
}

// None returns an absent Optional.
func None[T comparable]() (o Optional[T]) {
	return o
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (value T, ok bool) {
	value = o.value
	ok = o.ok
	return value, ok
}

// Present reports whether a value is held.
func (o Optional[T]) Present() (ok bool) {
	ok = o.ok
	return ok
}

// OrElse returns the held value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) (value T) {
	if o.ok {
		value = o.value
		return value
	}
	value = fallback
	return value
}

// MarshalJSON renders an absent value as null.
func (o Optional[T]) MarshalJSON() (data []byte, err error) {
	if !o.ok {
		data = []byte("null")
		return data, err
	}
	data, err = json.Marshal(o.value)
	return data, err
}
