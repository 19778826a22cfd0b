package rewire

import "reflect"

// binding ties the Switcher to one attached stream. A new binding is created
// for every attachment and is never reused after unbind.
//
// outbox holds chunks accepted for the stream but not yet written to it. It
// and flushing are guarded by the Switcher's mutex. Whoever finds flushing
// unset drains the outbox; everyone else only appends.
type binding[T any] struct {
	stream      Duplex[T]
	generation  uint64
	unsubscribe func()

	outbox   []T
	flushing bool
}

func bind[T any](stream Duplex[T], generation uint64, h Handlers[T]) *binding[T] {
	return &binding[T]{
		stream:      stream,
		generation:  generation,
		unsubscribe: stream.Subscribe(h),
	}
}

func (b *binding[T]) unbind() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
