// Package ndjson decodes newline-delimited JSON streams one value at a time.
package ndjson

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/kbukum/shownotes/httpclient"
)

const maxLineSize = 1 << 20

// Decoder is a lazy, finite, non-restartable sequence of JSON values read
// from a byte stream. It ends when the stream closes or a value satisfies the
// done predicate; either way the underlying body is closed.
type Decoder[T any] struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	done     func(T) bool
	finished bool
}

// NewDecoder creates a decoder over body. done may be nil.
func NewDecoder[T any](body io.ReadCloser, done func(T) bool) *Decoder[T] {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder[T]{body: body, scanner: sc, done: done}
}

// Next returns the next value. ok is false once the sequence has ended; the
// value that satisfied done is still returned with ok=true.
// Decode failures wrap httpclient.ErrDecode.
func (d *Decoder[T]) Next(ctx context.Context) (value T, ok bool, err error) {
	if d.finished {
		return value, false, nil
	}
	if err := ctx.Err(); err != nil {
		_ = d.Close()
		return value, false, err
	}

	for d.scanner.Scan() {
		line := d.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, &value); err != nil {
			_ = d.Close()
			return value, false, fmt.Errorf("%w: ndjson line: %w", httpclient.ErrDecode, err)
		}
		if d.done != nil && d.done(value) {
			_ = d.Close()
		}
		return value, true, nil
	}

	scanErr := d.scanner.Err()
	_ = d.Close()
	return value, false, scanErr
}

// All ranges over the remaining values. Iteration stops after the first error.
func (d *Decoder[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := d.Next(ctx)
			if err != nil {
				yield(v, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Close ends the sequence and releases the body. Safe to call repeatedly.
func (d *Decoder[T]) Close() error {
	if d.finished {
		return nil
	}
	d.finished = true
	return d.body.Close()
}
