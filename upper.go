package main

// upper maps ASCII lowercase letters in b to uppercase in place.
// Any other byte, including non-ASCII, is left as is.
func upper(b []byte) {
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
}
