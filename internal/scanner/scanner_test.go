package scanner

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one call on a scanner followed by a check of its position.
type step struct {
	op   string // read, peek, back, skip
	want byte
	pos  Pos
}

func runSteps(t *testing.T, s *Scanner, steps []step) {
	t.Helper()
	for i, st := range steps {
		var b byte
		var err error
		switch st.op {
		case "read":
			b, err = s.Read()
		case "peek":
			b, err = s.Peek()
		case "skip":
			b, err = s.SkipSpaceAndPeek()
		case "back":
			s.Back()
			b = st.want
		default:
			t.Fatalf("step %d: unknown op %q", i, st.op)
		}
		require.NoError(t, err, "step %d", i)
		require.Equal(t, st.want, b, "step %d (%s): got %q", i, st.op, b)
		require.Equal(t, st.pos, s.CurrentPos(), "step %d (%s)", i, st.op)
	}
}

func TestReadPeekBack(t *testing.T) {
	s := NewScanner(strings.NewReader("bonjour"))
	runSteps(t, s, []step{
		{"read", 'b', Pos{0, 1}},
		{"read", 'o', Pos{0, 2}},
		{"peek", 'n', Pos{0, 2}},
		{"read", 'n', Pos{0, 3}},
		{"back", 0, Pos{0, 2}},
		{"read", 'n', Pos{0, 3}},
	})
	assert.Equal(t, Pos{0, 3}, s.StartToken())
	runSteps(t, s, []step{
		{"read", 'j', Pos{0, 4}},
		{"read", 'o', Pos{0, 5}},
		{"read", 'u', Pos{0, 6}},
		{"read", 'r', Pos{0, 7}},
		{"read", EOF, Pos{0, 7}},
		{"back", 0, Pos{0, 7}},
		{"read", EOF, Pos{0, 7}},
		{"peek", EOF, Pos{0, 7}},
	})
	assert.Equal(t, "jour", string(s.EndToken()))
}

func TestPositions(t *testing.T) {
	s := NewScanner(strings.NewReader("é\n  \t\r\nxy"))
	runSteps(t, s, []step{
		{"read", 0xC3, Pos{0, 1}},
		{"read", 0xA9, Pos{0, 1}},
		{"read", '\n', Pos{1, 0}},
		{"skip", 'x', Pos{2, 0}},
		{"skip", 'x', Pos{2, 0}},
		{"read", 'x', Pos{2, 1}},
		{"back", 0, Pos{2, 0}},
		{"read", 'x', Pos{2, 1}},
	})
	assert.Equal(t, "L3,C2", s.CurrentPos().String())
}

func TestBackPanics(t *testing.T) {
	s := NewScanner(strings.NewReader("ab"))
	assert.Panics(t, s.Back, "nothing read yet")

	s.Read()
	s.Back()
	assert.Panics(t, s.Back, "two backs in a row")

	s.Read()
	s.StartToken()
	assert.Panics(t, s.Back, "back before the token start")
	assert.Panics(t, func() { s.StartToken() }, "nested token")
	s.EndToken()
	assert.Panics(t, func() { s.EndToken() }, "no token")

	s = NewScanner(strings.NewReader("a b"))
	s.Read()
	s.SkipSpaceAndPeek()
	assert.Panics(t, s.Back, "back after skipping space")

	s = NewScanner(strings.NewReader("ab"))
	s.Read()
	s.SkipSpaceAndPeek()
	assert.NotPanics(t, s.Back, "skipping nothing keeps the last read")
}

func TestSmallBuffer(t *testing.T) {
	const line = "A very long string.\n"
	s := NewScannerSize(strings.NewReader(strings.Repeat(line, 40)), 16)

	var acc []byte
	for len(acc) < 10*len(line) {
		b, err := s.Read()
		require.NoError(t, err)
		acc = append(acc, b)
	}
	require.Equal(t, strings.Repeat(line, 10), string(acc))

	// Tokens longer than the buffer are put back together.
	for i := 1; i <= 3; i++ {
		require.Equal(t, Pos{10 * i, 0}, s.StartToken())
		for n := 0; n < 10*len(line); n++ {
			_, err := s.Read()
			require.NoError(t, err)
		}
		// The byte after the token is not part of it.
		s.Read()
		s.Back()
		require.Equal(t, strings.Repeat(line, 10), string(s.EndToken()))
	}
	b, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, EOF, b)
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) {
	return 0, nil
}

func TestReaderErrors(t *testing.T) {
	errBoom := errors.New("boom")
	s := NewScanner(io.MultiReader(strings.NewReader("a"), iotest.ErrReader(errBoom)))
	b, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)
	_, err = s.Read()
	assert.ErrorIs(t, err, errBoom)
	_, err = s.Peek()
	assert.ErrorIs(t, err, errBoom)
	_, err = s.SkipSpaceAndPeek()
	assert.ErrorIs(t, err, errBoom)

	_, err = NewScanner(emptyReader{}).Read()
	assert.ErrorIs(t, err, io.ErrNoProgress)
}

func TestCharClasses(t *testing.T) {
	assert.True(t, IsDigit('0'))
	assert.True(t, IsDigit('9'))
	assert.False(t, IsDigit('a'))
	assert.False(t, IsDigit(EOF))
	assert.True(t, IsCtrl('\n'))
	assert.True(t, IsCtrl(0))
	assert.False(t, IsCtrl(' '))
}
