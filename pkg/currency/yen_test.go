package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "¥0", FormatYen(0))
	assert.Equal(t, "¥180", FormatYen(180))
	assert.Equal(t, "¥1,200", FormatYen(1200))
	assert.Equal(t, "¥12,345,678", FormatYen(12345678))
}
