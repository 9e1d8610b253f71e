package device

import (
	"image"
	"sync"
)

type drawCall struct {
	img   *image.RGBA
	level int
}

// fakePanel records what the display pushes to it.
type fakePanel struct {
	mu     sync.Mutex
	draws  []drawCall
	halts  int
	closed bool
	drawn  chan struct{}
}

func newFakePanel() *fakePanel {
	return &fakePanel{drawn: make(chan struct{}, 64)}
}

func (p *fakePanel) Draw(img *image.RGBA, level int) error {
	p.mu.Lock()
	p.draws = append(p.draws, drawCall{img: img, level: level})
	p.mu.Unlock()
	p.drawn <- struct{}{}
	return nil
}

func (p *fakePanel) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halts++
	return nil
}

func (p *fakePanel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePanel) drawCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.draws)
}
