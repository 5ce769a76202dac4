// Package cb provides the two kinds of callbacks hardware components use to
// signal each other.
//
// A Required callback can always be called: its zero value is a no-op, so
// call sites never check for presence. An Optional callback may genuinely be
// absent; callers that care can ask with IsSet, and calling an unset Optional
// is a no-op as well.
package cb

type Required[A any] struct {
	fn func(A)
}

func NewRequired[A any](fn func(A)) Required[A] {
	return Required[A]{fn: fn}
}

func (r Required[A]) Call(arg A) {
	if r.fn != nil {
		r.fn(arg)
	}
}

type Optional[A any] struct {
	fn func(A)
}

func NewOptional[A any](fn func(A)) Optional[A] {
	return Optional[A]{fn: fn}
}

func (o Optional[A]) IsSet() bool { return o.fn != nil }

func (o Optional[A]) Call(arg A) {
	if o.fn != nil {
		o.fn(arg)
	}
}
