package otelkafkax

import (
	"reflect"
	"sync"
)

// wrappedSet tracks the code pointers of wrapper functions this tracer
// produced. Applying a wrap to an already wrapped function is a no-op, so
// repeated patch application cannot double-trace an operation.
type wrappedSet struct {
	ptrs sync.Map
}

func (s *wrappedSet) mark(fn any) {
	if p, ok := funcPointer(fn); ok {
		s.ptrs.Store(p, struct{}{})
	}
}

func (s *wrappedSet) contains(fn any) bool {
	p, ok := funcPointer(fn)
	if !ok {
		return false
	}
	_, found := s.ptrs.Load(p)
	return found
}

// IsWrapped reports whether fn is a wrapper previously produced by this
// tracer. Detection is by wrapper identity; it never inspects fn's body.
func (t *Tracer) IsWrapped(fn any) bool {
	return t.wrapped.contains(fn)
}

// MarkWrapped registers fn as a wrapper so a later wrap call returns it
// unchanged. Adapter packages use this to keep their own wrap entry points
// idempotent.
func (t *Tracer) MarkWrapped(fn any) {
	t.wrapped.mark(fn)
}

func funcPointer(fn any) (uintptr, bool) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return 0, false
	}
	return v.Pointer(), true
}
