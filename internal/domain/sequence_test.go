package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSequence(t *testing.T) {
	t.Run("sorts newest first and strips time", func(t *testing.T) {
		quotations := []*Quotation{
			{ID: 1, Date: day(1).Add(15 * time.Hour), Close: 100},
			{ID: 3, Date: day(5).Add(9 * time.Hour), Close: 103},
			{ID: 2, Date: day(4), Close: 101},
		}

		seq, err := NewSequence(quotations)
		require.NoError(t, err)
		require.Len(t, seq, 3)

		assert.Equal(t, int64(3), seq[0].ID)
		assert.Equal(t, int64(2), seq[1].ID)
		assert.Equal(t, int64(1), seq[2].ID)
		assert.Equal(t, day(5), seq[0].Date)
		assert.Equal(t, day(1), seq[2].Date)
	})

	t.Run("rejects duplicate days", func(t *testing.T) {
		quotations := []*Quotation{
			{ID: 1, Date: day(4).Add(10 * time.Hour)},
			{ID: 2, Date: day(4).Add(16 * time.Hour)},
		}

		_, err := NewSequence(quotations)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateDate)
	})

	t.Run("rejects quotations without id", func(t *testing.T) {
		quotations := []*Quotation{
			{ID: 1, Date: day(3)},
			{Date: day(4)},
		}

		_, err := NewSequence(quotations)
		assert.ErrorIs(t, err, ErrMissingQuotationID)
	})

	t.Run("rejects repeated ids", func(t *testing.T) {
		quotations := []*Quotation{
			{ID: 7, Date: day(3)},
			{ID: 7, Date: day(4)},
		}

		_, err := NewSequence(quotations)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate quotation id 7")
	})

	t.Run("skips nil entries", func(t *testing.T) {
		seq, err := NewSequence([]*Quotation{nil, {ID: 1, Date: day(2)}})
		require.NoError(t, err)
		assert.Len(t, seq, 1)
	})
}

func TestSequence_Navigation(t *testing.T) {
	seq, err := NewSequence([]*Quotation{
		{ID: 10, Date: day(1), Close: 100},
		{ID: 11, Date: day(2), Close: 102},
		{ID: 12, Date: day(3), Close: 99},
		{ID: 13, Date: day(4), Close: 101},
		{ID: 14, Date: day(5), Close: 103},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, seq.IndexOf(seq[0]))
	assert.Equal(t, 2, seq.IndexOf(&Quotation{ID: 12}))
	assert.Equal(t, 1, seq.IndexOf(&Quotation{Date: day(4)}))
	assert.Equal(t, -1, seq.IndexOf(&Quotation{ID: 99}))
	assert.Equal(t, -1, seq.IndexOf(nil))

	assert.Equal(t, int64(14), seq.Latest().ID)
	assert.Equal(t, int64(13), seq.Previous(0).ID)
	assert.Nil(t, seq.Previous(4))
	assert.Nil(t, seq.At(-1))

	assert.Equal(t, 5, seq.Remaining(0))
	assert.Equal(t, 1, seq.Remaining(4))
	assert.Equal(t, 0, seq.Remaining(5))

	window, ok := seq.Window(1, 3)
	require.True(t, ok)
	assert.Equal(t, []float64{101, 99, 102}, window.Closes())

	_, ok = seq.Window(3, 3)
	assert.False(t, ok)

	assert.Len(t, seq.Since(day(3)), 3)
	assert.Len(t, seq.Since(day(10)), 0)
	assert.Len(t, seq.Since(day(1)), 5)

	assert.Nil(t, Sequence{}.Latest())
}

func TestInstrumentType_Valid(t *testing.T) {
	assert.True(t, InstrumentTypeStock.Valid())
	assert.True(t, InstrumentTypeIndustryGroup.Valid())
	assert.False(t, InstrumentType("BOND").Valid())
}

func TestUTCDate(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	local := time.Date(2024, time.March, 5, 0, 30, 0, 0, berlin)

	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), UTCDate(local))
	assert.True(t, SameDay(local, UTCDate(local)))
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, berlin), TruncateDate(local))
}
