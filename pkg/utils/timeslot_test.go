package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.clock)
		if tt.wantErr {
			assert.Error(t, err, tt.clock)
			continue
		}
		assert.NoError(t, err, tt.clock)
		assert.Equal(t, tt.want, got, tt.clock)
	}
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2026-09-10")
	assert.NoError(t, err)

	_, err = ParseDate("10-09-2026")
	assert.Error(t, err)

	_, err = ParseDate("2026-13-01")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	// Half-open intervals: touching endpoints do not overlap.
	assert.False(t, Overlaps(540, 600, 600, 660))
	assert.False(t, Overlaps(600, 660, 540, 600))

	assert.True(t, Overlaps(540, 600, 570, 630))
	assert.True(t, Overlaps(570, 630, 540, 600))
	assert.True(t, Overlaps(540, 720, 600, 660))
	assert.True(t, Overlaps(600, 660, 540, 720))

	assert.False(t, Overlaps(540, 600, 660, 720))
}
