package fdexpect

import "bytes"

// matcher accumulates bytes for a single expectation and reports when the tail of the accumulated buffer equals the
// pattern. Anything before the tail is never searched.
type matcher struct {
	pattern []byte
	buffer  []byte
}

func newMatcher(pattern string) *matcher {
	return &matcher{
		pattern: []byte(pattern),
		buffer:  []byte{},
	}
}

func (m *matcher) feed(b byte) bool {
	m.buffer = append(m.buffer, b)
	return bytes.HasSuffix(m.buffer, m.pattern)
}

func (m *matcher) bytes() []byte {
	return m.buffer
}
