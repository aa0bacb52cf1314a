package progress_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadirbelkuyu/dbddl/pkg/progress"
)

func TestBarWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	bar := progress.NewBarWithWriter(&buf, 3, "Extracting")

	bar.Increment()
	bar.Describe("orders")
	bar.Increment()
	bar.Increment()
	bar.Finish()

	assert.Contains(t, buf.String(), "Extracting")
	assert.True(t, bar.IsFinished())
	assert.Equal(t, float64(1), bar.State().CurrentPercent)
}

func TestFinishOnEmptyBar(t *testing.T) {
	bar := &progress.Bar{}
	assert.NotPanics(t, bar.Finish)
}
