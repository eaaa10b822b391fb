// Copyright (c) Microsoft. All rights reserved.

package agentloop

import (
	"context"
	"io"
	"iter"
	"sync"
)

// ResponseStream provides a pull-based iterator over streaming responses.
// The producer advances only when the consumer asks for the next value, so
// a slow consumer applies backpressure all the way to the network read.
//
// The stream releases its resources once it is exhausted, fails, or is
// closed. Callers that stop early must call Close; it is safe to call Close
// after the stream has already finished.
type ResponseStream[T any] struct {
	next      func() (T, error, bool)
	stop      func()
	closer    io.Closer
	closeOnce sync.Once
	closeErr  error
	done      bool
	err       error
}

// NewResponseStream creates a ResponseStream that pulls values from seq.
// closer, if non-nil, is closed exactly once when the stream ends or is
// closed, including when seq was never started.
func NewResponseStream[T any](seq iter.Seq2[T, error], closer io.Closer) *ResponseStream[T] {
	next, stop := iter.Pull2(seq)
	return &ResponseStream[T]{
		next:   next,
		stop:   stop,
		closer: closer,
	}
}

// Next returns the next value from the stream.
// ok is false when the stream is exhausted. err is non-nil on failure.
func (s *ResponseStream[T]) Next(ctx context.Context) (val T, ok bool, err error) {
	var zero T
	if s.done {
		return zero, false, s.err
	}
	if err := ctx.Err(); err != nil {
		s.finish(err)
		return zero, false, err
	}

	v, verr, more := s.next()
	switch {
	case !more:
		s.finish(nil)
		return zero, false, nil
	case verr != nil:
		s.finish(verr)
		return zero, false, verr
	}
	return v, true, nil
}

// All returns a range-over-func iterator over the remaining values. The
// iteration yields a single non-nil error as its last element on failure.
// Breaking out of the loop closes the stream.
func (s *ResponseStream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains the entire stream and returns all values.
func (s *ResponseStream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		val, ok, err := s.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}

// Close stops the producer and releases the underlying resources.
// Safe to call multiple times.
func (s *ResponseStream[T]) Close() error {
	if !s.done {
		s.finish(ErrStreamClosed)
	}
	return s.closeErr
}

func (s *ResponseStream[T]) finish(err error) {
	s.done = true
	if s.err == nil {
		s.err = err
	}
	s.closeOnce.Do(func() {
		s.stop()
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
}

// MapStream transforms a ResponseStream[A] into a ResponseStream[B] using fn.
// Closing the returned stream closes src.
func MapStream[A, B any](ctx context.Context, src *ResponseStream[A], fn func(A) B) *ResponseStream[B] {
	seq := func(yield func(B, error) bool) {
		for v, err := range src.All(ctx) {
			if err != nil {
				var zero B
				yield(zero, err)
				return
			}
			if !yield(fn(v), nil) {
				return
			}
		}
	}
	return NewResponseStream[B](seq, closerFunc(src.Close))
}

// closerFunc adapts a function to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }
