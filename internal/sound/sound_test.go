package sound

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/hammamikhairi/focustrack/internal/logger"
)

func wav(pcm []byte, extra ...byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(extra)+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	b.Write(make([]byte, 16))
	if len(extra) > 0 {
		b.WriteString("LIST")
		binary.Write(&b, binary.LittleEndian, uint32(len(extra)))
		b.Write(extra)
		if len(extra)%2 != 0 {
			b.WriteByte(0)
		}
	}
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestExtractPCM(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name    string
		in      []byte
		want    []byte
		wantErr bool
	}{
		{"plain", wav(pcm), pcm, false},
		{"odd chunk before data", wav(pcm, 'a', 'b', 'c'), pcm, false},
		{"too short", []byte("RIFF"), nil, true},
		{"not wave", append([]byte("RIFF0000AVI "), make([]byte, 40)...), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractPCM(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("pcm = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChime(t *testing.T) {
	pcm := Chime()
	if len(pcm) == 0 || len(pcm)%2 != 0 {
		t.Fatalf("expected whole 16-bit samples, got %d bytes", len(pcm))
	}
	secs := float64(len(pcm)/2) / SampleRate
	if secs < 0.5 || secs > 2 {
		t.Fatalf("chime length %.2fs out of range", secs)
	}

	var peak int16
	for i := 0; i < len(pcm); i += 2 {
		v := int16(binary.LittleEndian.Uint16(pcm[i:]))
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	if peak == 0 {
		t.Fatal("chime is silent")
	}
}

func TestNoOpPlayCue(t *testing.T) {
	n := NewNoOp(logger.New(logger.LevelOff, nil))
	if err := n.PlayCue(context.Background()); err != nil {
		t.Fatalf("PlayCue: %v", err)
	}
}
