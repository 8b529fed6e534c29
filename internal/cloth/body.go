package cloth

import "sync"

// BodyBuffer hands landmark frames from one producer goroutine to one
// consumer goroutine. Publish fills the back slot and swaps it to the front
// under the mutex; Snapshot copies the front slot out.
type BodyBuffer struct {
	mu    sync.Mutex
	slots [2][]Vec3
	front int
	seq   uint64
}

func NewBodyBuffer() *BodyBuffer {
	return &BodyBuffer{}
}

// Publish stores a copy of landmarks as the latest frame.
func (b *BodyBuffer) Publish(landmarks []Vec3) {
	b.mu.Lock()
	back := 1 - b.front
	slot := b.slots[back]
	b.mu.Unlock()

	slot = append(slot[:0], landmarks...)

	b.mu.Lock()
	b.slots[back] = slot
	b.front = back
	b.seq++
	b.mu.Unlock()
}

// Snapshot copies the latest frame into dst and returns it with the frame's
// sequence number. A sequence of 0 means nothing was published yet.
func (b *BodyBuffer) Snapshot(dst []Vec3) ([]Vec3, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(dst[:0], b.slots[b.front]...), b.seq
}

// Seq returns the number of frames published so far.
func (b *BodyBuffer) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
