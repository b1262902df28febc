package snapshots

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_MovingAverageIsIdempotent(t *testing.T) {
	table := NewTable()
	ma := MovingAverage{SMA10: 101.5, SMA50: 99.25, SMA30Volume: 12000}

	table.SetMovingAverage(1, ma)
	table.SetMovingAverage(1, ma)

	got, ok := table.MovingAverage(1)
	require.True(t, ok)
	assert.Equal(t, ma, got)
	assert.Equal(t, 1, table.Len())

	_, ok = table.MovingAverage(2)
	assert.False(t, ok)
}

func TestTable_UpdateRelativeStrength(t *testing.T) {
	table := NewTable()

	updated := table.UpdateRelativeStrength(7, func(rs *RelativeStrength) { rs.RSNumber = 80 })
	assert.False(t, updated, "missing snapshot must not be created")
	_, ok := table.RelativeStrength(7)
	assert.False(t, ok)

	table.SetRelativeStrength(7, RelativeStrength{RSPercentSum: 42.5})
	updated = table.UpdateRelativeStrength(7, func(rs *RelativeStrength) { rs.RSNumber = 80 })
	require.True(t, updated)

	rs, ok := table.RelativeStrength(7)
	require.True(t, ok)
	assert.Equal(t, 80, rs.RSNumber)
	assert.Equal(t, 42.5, rs.RSPercentSum)
}

func TestTable_CopiesAreDetached(t *testing.T) {
	table := NewTable()
	table.SetMovingAverage(1, MovingAverage{SMA10: 1})
	table.SetRelativeStrength(1, RelativeStrength{RSNumber: 5})

	mas := table.MovingAverages()
	mas[2] = MovingAverage{}
	rss := table.RelativeStrengths()
	delete(rss, 1)

	assert.Equal(t, 1, table.Len())
	_, ok := table.RelativeStrength(1)
	assert.True(t, ok)
}

func TestTable_ConcurrentWrites(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			table.SetMovingAverage(id, MovingAverage{SMA10: float64(id)})
			table.SetRelativeStrength(id, RelativeStrength{})
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 50, table.Len())
	assert.Len(t, table.RelativeStrengths(), 50)
}
