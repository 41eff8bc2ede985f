package main

import (
	"os"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressBar shows label calls as they complete.  The total grows as the mutator learns how
// much work there is.
type progressBar struct {
	p   *mpb.Progress
	bar *mpb.Bar

	mu    sync.Mutex
	total int64
}

func newProgressBar(name string) *progressBar {
	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
	bar := p.AddBar(0,
		mpb.PrependDecorators(
			decor.Name(name+":", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
		),
	)

	return &progressBar{p: p, bar: bar}
}

func (b *progressBar) Expect(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total += int64(n)
	b.bar.SetTotal(b.total, false)
}

func (b *progressBar) Done() {
	b.bar.Increment()
}

// Wait marks the bar complete, wherever it got to, and waits for it to render.
func (b *progressBar) Wait() {
	b.bar.SetTotal(-1, true)
	b.p.Wait()
}
