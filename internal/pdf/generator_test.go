package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintOptionsA4WithBackground(t *testing.T) {
	opts := PrintOptions()

	require.NotNil(t, opts.PaperWidth)
	require.NotNil(t, opts.PaperHeight)
	assert.InDelta(t, 8.27, *opts.PaperWidth, 0.001)
	assert.InDelta(t, 11.69, *opts.PaperHeight, 0.001)
	assert.True(t, opts.PrintBackground)
	assert.Zero(t, *opts.MarginTop)
	assert.Zero(t, *opts.MarginLeft)
}

func TestNewRodPrinterDefaults(t *testing.T) {
	p := NewRodPrinter(nil, 0)
	assert.Equal(t, 60*time.Second, p.timeout)
	assert.NotNil(t, p.logger)
}
