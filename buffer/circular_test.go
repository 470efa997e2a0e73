package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	assert := assert.New(t)

	w := NewWindow(6)
	assert.Equal(6, w.BufSize)
	assert.Equal(0, w.Count)

	w.Add(1)
	w.Add(2)
	w.Add(3)
	w.Add(4)
	w.Add(5)
	assert.Equal(6, w.BufSize)
	assert.Equal(5, w.Count)
	assert.False(w.Full())
	assert.Nil(w.FirstHalf())
	assert.Nil(w.SecondHalf())

	w.Add(6)
	assert.Equal(6, w.BufSize)
	assert.Equal(6, w.Count)
	assert.True(w.Full())

	exp := 0.0
	for iter := w.FirstHalf(); iter.Next(); {
		val := iter.Value()
		exp++
		assert.Equal(exp, val)
	}
	for iter := w.SecondHalf(); iter.Next(); {
		val := iter.Value()
		exp++
		assert.Equal(exp, val)
	}

	// 1 2 3 4 5 6 add 8 add 8 => 8 8 3 4 5 6
	// So first=3,4,5 second=6,8,8
	w.Add(8)
	w.Add(8)
	expVals := []float64{3, 4, 5, 6, 8, 8}
	idx := 0
	for iter := w.FirstHalf(); iter.Next(); {
		val := iter.Value()
		assert.Equal(expVals[idx], val)
		idx++
	}
	for iter := w.SecondHalf(); iter.Next(); {
		val := iter.Value()
		assert.Equal(expVals[idx], val)
		idx++
	}

	assert.Equal(int64(8), w.TotalSeen)
}

func TestWindowOddSize(t *testing.T) {
	assert := assert.New(t)

	w := NewWindow(7)
	assert.Equal(6, w.BufSize)
}
