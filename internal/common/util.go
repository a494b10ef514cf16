package common

// WipeByteArray overwrites the slice contents with zeros. Used to drop
// password material as soon as it has been consumed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
