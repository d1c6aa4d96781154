package relay

import (
	"context"
	"errors"
	"io"
	"sync"
	"unicode/utf8"
)

// readBufferSize is the chunk size for upstream body reads.
const readBufferSize = 4096

// StreamReader owns the byte-level read loop against an upstream response
// body. It decodes bytes to text incrementally, carrying partial multi-byte
// sequences across reads so that no fragment ever splits inside a UTF-8 code
// point, and hands each decoded fragment to a callback.
//
// The underlying source is released exactly once, on every exit path.
type StreamReader struct {
	src       io.ReadCloser
	buf       []byte
	carry     []byte
	closeOnce sync.Once
	closeErr  error
}

// NewStreamReader wraps an open upstream body.
func NewStreamReader(src io.ReadCloser) *StreamReader {
	return &StreamReader{
		src: src,
		buf: make([]byte, readBufferSize),
	}
}

// Run pulls chunks from the source until end-of-data, invoking onFragment
// with the decoded text of each chunk. It returns nil on a normal EOF, the
// context's cause when cancelled, the read error on a source failure, or the
// callback's error if onFragment rejects a fragment. The source is closed
// before Run returns.
func (r *StreamReader) Run(ctx context.Context, onFragment func(string) error) error {
	defer r.Close()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		default:
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			if text := r.decode(r.buf[:n]); text != "" {
				if cbErr := onFragment(text); cbErr != nil {
					return cbErr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				// A truncated trailing sequence only occurs on a malformed
				// stream; flush it rather than drop bytes.
				if len(r.carry) > 0 {
					if cbErr := onFragment(string(r.carry)); cbErr != nil {
						return cbErr
					}
					r.carry = nil
				}
				return nil
			}
			return err
		}
	}
}

// decode appends p to any carried bytes and returns the longest prefix that
// ends on a complete code point. The incomplete tail, if any, is retained for
// the next call.
func (r *StreamReader) decode(p []byte) string {
	r.carry = append(r.carry, p...)

	cut := len(r.carry)
	for back := 1; back < utf8.UTFMax && back <= len(r.carry); back++ {
		b := r.carry[len(r.carry)-back]
		if utf8.RuneStart(b) {
			if !utf8.FullRune(r.carry[len(r.carry)-back:]) {
				cut = len(r.carry) - back
			}
			break
		}
	}

	out := string(r.carry[:cut])
	r.carry = append(r.carry[:0], r.carry[cut:]...)
	return out
}

// Close releases the underlying source. It is idempotent; repeated calls
// return the first close result.
func (r *StreamReader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.src.Close()
	})
	return r.closeErr
}
