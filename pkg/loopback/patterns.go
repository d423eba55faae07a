package loopback

// Patterns returns the fixed test sequence: the four basic patterns, the
// eight walking 1s, their complements (walking 0s), then the nibble and
// dual-bit patterns. 24 values; every line is exercised individually and in
// combination.
func Patterns() []byte {
	patterns := make([]byte, 0, 24)
	patterns = append(patterns, 0x00, 0xFF, 0xAA, 0x55)
	for i := 0; i < 8; i++ {
		patterns = append(patterns, 1<<i)
	}
	for i := 0; i < 8; i++ {
		patterns = append(patterns, 0xFF^(1<<i))
	}
	return append(patterns, 0x0F, 0xF0, 0x33, 0xCC)
}
