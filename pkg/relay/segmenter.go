package relay

import "unicode"

// Segmentation splits streamed text at natural sentence boundaries so that
// segments can be pushed downstream as soon as they are complete. Two boundary
// rules compete:
//
//   - CJK-style: a fullwidth sentence terminator (。 ！ ？) or a newline ends
//     a segment by itself; the break is one rune wide.
//   - Latin-style: a sentence terminator (. ! ?) immediately followed by one
//     whitespace rune ends a segment; the break is two runes wide and the
//     separator is consumed with the segment rather than re-emitted.
//
// The scan is strictly left to right, so the earlier boundary always wins; at
// the same position the one-rune rule is checked first. A Latin terminator at
// the very end of the buffer is not a boundary yet; the separator may arrive
// in the next fragment.

// isFullWidthTerminator reports whether r ends a sentence on its own.
func isFullWidthTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？' // 。 ！ ？
}

// isLatinTerminator reports whether r ends a sentence when followed by a
// whitespace separator.
func isLatinTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Segment splits the concatenation of remainder and fragment into zero or
// more completed segments plus the unterminated tail. It is a pure function:
// deterministic, synchronous, and free of I/O. Segments are never empty and
// preserve source order; concatenating the segments with the returned tail
// reproduces remainder+fragment exactly.
//
// Text that never contains a boundary accumulates in the tail without limit;
// the caller flushes it when the stream ends.
func Segment(remainder, fragment string) (segments []string, tail string) {
	buf := []rune(remainder + fragment)
	start := 0
	for i := 0; i < len(buf); i++ {
		r := buf[i]
		if isFullWidthTerminator(r) || r == '\n' {
			segments = append(segments, string(buf[start:i+1]))
			start = i + 1
			continue
		}
		if isLatinTerminator(r) && i+1 < len(buf) && unicode.IsSpace(buf[i+1]) {
			segments = append(segments, string(buf[start:i+2]))
			start = i + 2
			i++ // separator consumed with the segment
		}
	}
	return segments, string(buf[start:])
}
