package scanner

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// IsCtrl reports whether b is a control character, which JSON strings may not
// contain unescaped.
func IsCtrl(b byte) bool {
	return b < 0x20
}
