// Package scanner implements the byte reader used by the text decoders.
package scanner

import (
	"fmt"
	"io"
)

// Pos is a zero based line and column in the input.  Columns count code
// points, not bytes.
type Pos struct {
	Line int
	Col  int
}

// String renders the position one based, the way editors show it.
func (p Pos) String() string {
	return fmt.Sprintf("L%d,C%d", p.Line+1, p.Col+1)
}

// A Scanner reads bytes from an io.Reader and keeps track of their position.
// It can step back one byte, and it can record the bytes of a token while
// they are read even if the token does not fit in its buffer.
type Scanner struct {
	reader io.Reader
	err    error

	// buf[r:w] is buffered input not read yet
	buf  []byte
	r, w int

	// prevPos.Line is negative when Back cannot be called
	pos, prevPos Pos

	// Bytes of the current token that were moved out of buf.  tokenStart is
	// the index in buf of the rest of it, or -1 when not recording.
	recorded   []byte
	tokenStart int

	// EOFs returned by Read that Back has not stepped over
	eofCount int
}

func NewScanner(reader io.Reader) *Scanner {
	return NewScannerSize(reader, defaultBufSize)
}

// NewScannerSize returns a Scanner with a buffer of the given size, which
// must be at least 2.
func NewScannerSize(reader io.Reader, size int) *Scanner {
	return &Scanner{
		reader:     reader,
		buf:        make([]byte, size),
		prevPos:    Pos{Line: -1},
		tokenStart: -1,
	}
}

// Read returns the next byte, or EOF at the end of the input.  The error is
// only non-nil if the reader failed.
func (s *Scanner) Read() (byte, error) {
	if s.r == s.w {
		s.fill()
		if s.r == s.w {
			if s.err == io.EOF {
				s.eofCount++
			}
			return s.errOrEOF()
		}
	}
	b := s.buf[s.r]
	s.r++
	s.prevPos = s.pos
	s.advance(b)
	return b, nil
}

// Peek returns the next byte without consuming it.
func (s *Scanner) Peek() (byte, error) {
	if s.r == s.w {
		s.fill()
		if s.r == s.w {
			return s.errOrEOF()
		}
	}
	return s.buf[s.r], nil
}

// Back undoes the last Read.  It panics if there was no Read since the last
// Back, or if that would step back before the start of the current token.
func (s *Scanner) Back() {
	if s.eofCount > 0 {
		s.eofCount--
		return
	}
	if s.prevPos.Line < 0 || s.r == 0 || s.r <= s.tokenStart {
		panic("scanner: cannot go back")
	}
	s.r--
	s.pos = s.prevPos
	s.prevPos.Line = -1
}

func (s *Scanner) CurrentPos() Pos {
	return s.pos
}

// StartToken starts recording bytes as they are read and returns the
// position of the token.
func (s *Scanner) StartToken() Pos {
	if s.tokenStart >= 0 {
		panic("scanner: already recording a token")
	}
	s.tokenStart = s.r
	return s.pos
}

// EndToken stops recording and returns the bytes read since StartToken.  The
// returned slice is not reused by the scanner.
func (s *Scanner) EndToken() []byte {
	if s.tokenStart < 0 {
		panic("scanner: not recording a token")
	}
	tok := append(s.recorded, s.buf[s.tokenStart:s.r]...)
	s.recorded = nil
	s.tokenStart = -1
	return tok
}

// SkipSpaceAndPeek consumes JSON whitespace and returns the byte after it,
// without consuming it.
func (s *Scanner) SkipSpaceAndPeek() (byte, error) {
	for {
		for s.r < s.w {
			switch b := s.buf[s.r]; b {
			case ' ', '\t', '\r', '\n':
				s.advance(b)
				s.r++
				s.prevPos.Line = -1
			default:
				return b, nil
			}
		}
		s.fill()
		if s.r == s.w {
			return s.errOrEOF()
		}
	}
}

func (s *Scanner) advance(b byte) {
	switch {
	case b == '\n':
		s.pos.Line++
		s.pos.Col = 0
	case b < 0x80 || b >= 0xC0:
		// first byte of a code point
		s.pos.Col++
	}
}

func (s *Scanner) errOrEOF() (byte, error) {
	if s.err == io.EOF {
		return EOF, nil
	}
	return 0, s.err
}

// fill reads more input into buf.  It is only called when all buffered input
// has been read.
func (s *Scanner) fill() {
	if s.err != nil {
		return
	}
	if s.w == len(s.buf) {
		s.compact()
	}
	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := s.reader.Read(s.buf[s.w:])
		s.w += n
		if err != nil {
			s.err = err
			return
		}
		if n > 0 {
			return
		}
	}
	s.err = io.ErrNoProgress
}

// compact moves the end of buf to its start.  The last byte read is kept so
// that Back still works, the part of the current token before it is moved to
// recorded.
func (s *Scanner) compact() {
	keep := max(s.r-1, 0)
	if s.tokenStart >= 0 && s.tokenStart < keep {
		s.recorded = append(s.recorded, s.buf[s.tokenStart:keep]...)
		s.tokenStart = keep
	}
	s.w = copy(s.buf, s.buf[keep:s.w])
	s.r -= keep
	if s.tokenStart >= 0 {
		s.tokenStart -= keep
	}
}

const (
	maxConsecutiveEmptyReads = 100
	defaultBufSize           = 8192
)

// 0xFF is a byte that should not appear in a UTF-8 encoded stream of bytes.
const EOF byte = 0xFF
