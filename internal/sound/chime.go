package sound

import (
	"encoding/binary"
	"math"
)

type note struct {
	freq float64
	dur  float64 // seconds
}

// Two rising bell tones.
var chimeNotes = []note{
	{freq: 880, dur: 0.35},
	{freq: 1318.5, dur: 0.6},
}

// Chime synthesizes the default cue as signed 16-bit little-endian PCM.
func Chime() []byte {
	var total int
	for _, n := range chimeNotes {
		total += int(n.dur * SampleRate)
	}
	pcm := make([]byte, 0, total*2)

	const amplitude = 0.35 * math.MaxInt16
	for _, n := range chimeNotes {
		samples := int(n.dur * SampleRate)
		for i := 0; i < samples; i++ {
			t := float64(i) / SampleRate
			// Short attack, exponential decay.
			env := math.Min(1, t/0.01) * math.Exp(-4*t/n.dur)
			v := amplitude * env * math.Sin(2*math.Pi*n.freq*t)
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(int16(v)))
		}
	}
	return pcm
}
