package sink

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

const defaultBlock = 512

// wavHeader is the canonical 44 byte header of a PCM wave file.
type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

func newWavHeader(sampleRate, channels, frames int) wavHeader {
	const bits = 16
	blockAlign := channels * bits / 8
	dataSize := uint32(frames * blockAlign)
	return wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bits,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// WAV renders a fixed duration into a 16 bit PCM wave file.
type WAV struct {
	Source     Source
	Path       string
	SampleRate int
	Channels   int
	Duration   time.Duration
	// Block is the number of frames rendered per Process call.
	Block int
}

func (w WAV) Run(ctx context.Context) error {
	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("can't create wav file: %w", err)
	}
	frames := int(math.Round(w.Duration.Seconds() * float64(w.SampleRate)))
	if err := Encode(ctx, f, w.Source, w.SampleRate, w.Channels, frames, w.Block); err != nil {
		f.Close()
		return fmt.Errorf("can't write %s: %w", w.Path, err)
	}
	return f.Close()
}

// Encode renders frames frames from src and writes them to out as a wave
// file. Samples are clipped to [-1, 1].
func Encode(ctx context.Context, out io.Writer, src Source, sampleRate, channels, frames, block int) error {
	if block <= 0 {
		block = defaultBlock
	}
	bw := bufio.NewWriter(out)
	if err := binary.Write(bw, binary.LittleEndian, newWavHeader(sampleRate, channels, frames)); err != nil {
		return err
	}

	bufs := make([][]float32, channels)
	for c := range bufs {
		bufs[c] = make([]float32, block)
	}
	pcm := make([]int16, block*channels)
	for done := 0; done < frames; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(block, frames-done)
		for c := range bufs {
			bufs[c] = bufs[c][:n]
		}
		src.Process(bufs)
		for i := range n {
			for c, buf := range bufs {
				pcm[i*channels+c] = toPCM(buf[i])
			}
		}
		if err := binary.Write(bw, binary.LittleEndian, pcm[:n*channels]); err != nil {
			return err
		}
		done += n
	}
	return bw.Flush()
}

func toPCM(x float32) int16 {
	x = max(-1, min(1, x))
	return int16(x * 32767)
}
