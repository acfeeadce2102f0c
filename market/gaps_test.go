package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaps(t *testing.T) {
	t.Parallel()

	// minutes 0,1,2 then 5 then 20
	s := flat(0, 60, 3)
	s = append(s, bar(300, 1, 1, 1, 1, 1), bar(1200, 1, 1, 1, 1, 1))

	gaps := Gaps(s, Minute)
	assert.Equal(t, []Gap{
		{Start: 180, Missing: 2, Kind: GapMinor},
		{Start: 360, Missing: 14, Kind: GapSuspicious},
	}, gaps)

	st := Stats(s, Minute)
	assert.Equal(t, GapStats{
		Expected:       21,
		Present:        5,
		Missing:        16,
		GapCount:       2,
		SuspiciousGaps: 1,
		LongestGap:     14,
	}, st)
}

func TestGaps_Contiguous(t *testing.T) {
	t.Parallel()

	s := flat(0, 3600, 3)
	assert.Empty(t, Gaps(s, Hour))
	assert.Equal(t, GapStats{Expected: 3, Present: 3}, Stats(s, Hour))
	assert.Equal(t, GapStats{}, Stats(nil, Minute))
	assert.Nil(t, Gaps(s, 0))
}
