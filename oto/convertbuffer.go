package oto

import (
	"encoding/binary"
	"math"

	"github.com/fieldsynth/fieldsynth"
)

const bytesPerFrame = 8 // two little-endian float32s

// encodeFloat32LE writes as many whole frames of src into dst as fit, and
// returns the number of frames written.
func encodeFloat32LE(dst []byte, src fieldsynth.AudioBuffer) int {
	n := min(len(dst)/bytesPerFrame, len(src))
	for i, s := range src[:n] {
		b := dst[i*bytesPerFrame:]
		binary.LittleEndian.PutUint32(b, math.Float32bits(s[0]))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(s[1]))
	}
	return n
}
