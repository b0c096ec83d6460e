package domain

// Frame is one length-prefixed unit read from the host stream.
// Len(Payload) always equals Length.
type Frame struct {
	// Length is the declared payload length from the 2-byte header
	Length uint16

	// Payload holds exactly Length bytes of colon-delimited text
	Payload []byte
}
