package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCalls(t *testing.T) {
	assert.Equal(t, []int{10}, splitCalls(10, 0))
	assert.Equal(t, []int{10}, splitCalls(10, 10))
	assert.Equal(t, []int{10}, splitCalls(10, 50))
	assert.Equal(t, []int{4, 4, 2}, splitCalls(10, 4))
	assert.Equal(t, []int{1, 1, 1}, splitCalls(3, 1))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2.500e-02", formatValue(0.025))
	assert.Equal(t, "0.2500", formatValue(0.25))
	assert.Equal(t, "12.0000", formatValue(12))
}
