package reflection

import (
	"sync"

	"github.com/wippyai/swift-reflection/records"
)

// Locked serializes every use of a Builder behind one mutex. Registration,
// node creation and queries all share the same lock.
type Locked struct {
	mu sync.Mutex
	b  *Builder
}

// NewLocked wraps b. The caller must not use b directly afterwards.
func NewLocked(b *Builder) *Locked {
	return &Locked{b: b}
}

// AddReflectionInfo registers info under the lock.
func (l *Locked) AddReflectionInfo(info records.ReflectionInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.AddReflectionInfo(info)
}

// Do runs fn with exclusive access to the builder. TypeRefs obtained inside
// fn stay valid afterwards; further queries on them must go through Do.
func (l *Locked) Do(fn func(b *Builder) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.b)
}
