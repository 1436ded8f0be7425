package domain

import "errors"

// Result carries either a value or a failure, never both and never neither.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Ok wraps a successful value. A nil interface value is a failure.
func Ok[T any](v T) Result[T] {
	if any(v) == nil {
		return Fail[T](errors.New("nil value"))
	}
	return Result[T]{value: v, ok: true}
}

// Fail wraps a failure. A nil err is replaced so the result still fails.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the success value or the failure.
func (r Result[T]) Value() (T, error) {
	return r.value, r.err
}

// Err is nil on success.
func (r Result[T]) Err() error { return r.err }

// Map applies f to a successful value, propagating failures unchanged.
func Map[T, U any](r Result[T], f func(T) (U, error)) Result[U] {
	if !r.ok {
		return Fail[U](r.err)
	}
	u, err := f(r.value)
	if err != nil {
		return Fail[U](err)
	}
	return Ok(u)
}
