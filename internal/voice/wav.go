package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// errNotWAV is wrapped into the processing-error detail when a clip is not a
// parseable RIFF/WAVE container.
var errNotWAV = errors.New("voice: not a RIFF/WAVE clip")

// wavClip is the decoded payload of a captured audio clip.
type wavClip struct {
	sampleRate int
	channels   int
	pcm        []byte // 16-bit signed little-endian, interleaved
}

// decodeWAV parses a WAV container holding 16-bit PCM audio. Chunks other
// than "fmt " and "data" are skipped.
func decodeWAV(data []byte) (wavClip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return wavClip{}, errNotWAV
	}

	var (
		clip     wavClip
		haveFmt  bool
		haveData bool
		audioFmt uint16
		bitDepth uint16
		offset   = 12
	)

	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if size < 0 || body+size > len(data) {
			return wavClip{}, fmt.Errorf("%w: truncated %q chunk", errNotWAV, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return wavClip{}, fmt.Errorf("%w: short fmt chunk", errNotWAV)
			}
			audioFmt = binary.LittleEndian.Uint16(data[body : body+2])
			clip.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
		case "data":
			clip.pcm = data[body : body+size]
			haveData = true
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		offset = body + size + size%2
	}

	if !haveFmt || !haveData {
		return wavClip{}, fmt.Errorf("%w: missing fmt or data chunk", errNotWAV)
	}
	if audioFmt != 1 {
		return wavClip{}, fmt.Errorf("voice: unsupported WAV format %d (want PCM)", audioFmt)
	}
	if bitDepth != 16 {
		return wavClip{}, fmt.Errorf("voice: unsupported bit depth %d (want 16)", bitDepth)
	}
	if clip.channels < 1 || clip.sampleRate <= 0 {
		return wavClip{}, fmt.Errorf("%w: invalid fmt chunk", errNotWAV)
	}
	return clip, nil
}

// downmixMono averages interleaved multi-channel 16-bit PCM into mono.
// Single-channel input is returned as-is.
func downmixMono(pcm []byte, channels int) []byte {
	if channels <= 1 {
		return pcm
	}
	frames := len(pcm) / (2 * channels)
	mono := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			idx := (i*channels + ch) * 2
			sum += int(int16(binary.LittleEndian.Uint16(pcm[idx : idx+2])))
		}
		binary.LittleEndian.PutUint16(mono[i*2:i*2+2], uint16(int16(sum/channels)))
	}
	return mono
}

// rmsEnergy returns the root-mean-square amplitude of 16-bit mono PCM, in
// raw sample units. An empty slice has zero energy.
func rmsEnergy(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

// peakWindowEnergy returns the highest RMS energy of any window-sized slice
// of pcm. A zero or negative window measures the whole clip at once.
func peakWindowEnergy(pcm []byte, windowSamples int) float64 {
	if windowSamples <= 0 {
		return rmsEnergy(pcm)
	}
	windowBytes := windowSamples * 2
	var peak float64
	for start := 0; start < len(pcm); start += windowBytes {
		end := min(start+windowBytes, len(pcm))
		if e := rmsEnergy(pcm[start:end]); e > peak {
			peak = e
		}
	}
	return peak
}
