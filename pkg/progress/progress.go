package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar reports catalog extraction progress on stderr; scripts and schema
// documents keep stdout to themselves. A zero Bar is inert.
type Bar struct {
	*progressbar.ProgressBar
}

// NewBarWithWriter renders to w. Callers pass stderr so the bar never mixes
// with a script written to stdout.
func NewBarWithWriter(w io.Writer, max int64, description string) *Bar {
	bar := progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)

	return &Bar{ProgressBar: bar}
}

func (b *Bar) Increment() {
	b.Add(1)
}

func (b *Bar) Finish() {
	if b.ProgressBar == nil {
		return
	}
	b.ProgressBar.Finish()
}
