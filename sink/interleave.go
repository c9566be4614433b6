package sink

import (
	"encoding/binary"
	"math"
)

const float32Size = 4

// Interleaver turns a Source into a stream of interleaved little endian
// float32 frames.
type Interleaver struct {
	src      Source
	channels int
	bufs     [][]float32
}

func NewInterleaver(src Source, channels int) *Interleaver {
	return &Interleaver{src: src, channels: channels, bufs: make([][]float32, channels)}
}

// Read renders as many whole frames as fit in p.
func (in *Interleaver) Read(p []byte) (int, error) {
	frameSize := float32Size * in.channels
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	for c := range in.bufs {
		if cap(in.bufs[c]) < frames {
			in.bufs[c] = make([]float32, frames)
		}
		in.bufs[c] = in.bufs[c][:frames]
	}
	in.src.Process(in.bufs)

	for i := range frames {
		for c, buf := range in.bufs {
			off := i*frameSize + c*float32Size
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(buf[i]))
		}
	}
	return frames * frameSize, nil
}
