package store

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeqClockResumes(t *testing.T) {
	assert.Equal(t, int64(0), resumeClock(0).current())

	c := resumeClock(41)
	assert.Equal(t, int64(41), c.current())
	seq := c.reserve()
	assert.Equal(t, int64(42), seq)
	c.release(seq, true)
	assert.Equal(t, int64(42), c.current())
}

func TestSeqClockAbandonedReservationIsReused(t *testing.T) {
	c := resumeClock(5)

	seq := c.reserve()
	c.release(seq, false)
	assert.Equal(t, int64(5), c.current())

	assert.Equal(t, seq, c.reserve())
	c.release(seq, true)
	assert.Equal(t, int64(6), c.current())
}

func TestSeqClockConcurrentReservationsAreDense(t *testing.T) {
	c := resumeClock(10)
	const workers, each = 8, 250

	var mu sync.Mutex
	var got []int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, each)
			for i := 0; i < each; i++ {
				seq := c.reserve()
				// Every third writer fails and gives its seq back.
				committed := i%3 != 0
				c.release(seq, committed)
				if committed {
					local = append(local, seq)
				}
			}
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.NotEmpty(t, got)
	for i, seq := range got {
		assert.Equal(t, int64(11+i), seq)
	}
	assert.Equal(t, got[len(got)-1], c.current())
}
