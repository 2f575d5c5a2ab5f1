package source

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func le16(samples ...int16) []byte {
	raw := make([]byte, 0, 2*len(samples))
	for _, s := range samples {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(s))
	}
	return raw
}

func TestSplitPCM(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		stereo   bool
		channels int
		frames   int
		want     [][]int16
	}{
		{"mono_to_mono", le16(1, -2, 3), false, 1, 3, [][]int16{{1, -2, 3}}},
		{"mono_to_stereo", le16(5, 6), false, 2, 2, [][]int16{{5, 6}, {5, 6}}},
		{"stereo_to_stereo", le16(1, 2, 3, 4), true, 2, 2, [][]int16{{1, 3}, {2, 4}}},
		{"stereo_to_mono", le16(100, 200, -32768, -32768), true, 1, 2, [][]int16{{150, -32768}}},
		{"partial", le16(7, 8, 9), false, 1, 2, [][]int16{{7, 8}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planes := make([][]int16, tt.channels)
			for ch := range planes {
				planes[ch] = make([]int16, tt.frames)
			}
			splitPCM(planes, tt.raw, tt.stereo, tt.frames)
			assert.Equal(t, tt.want, planes)
		})
	}
}
