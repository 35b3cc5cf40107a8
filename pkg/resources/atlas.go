package resources

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"
)

var ErrAtlasFull = fmt.Errorf("palette atlas is full")

// PaletteAtlas hands out rows of the shared palette texture. A loaded
// palette holds its row until it is destroyed.
type PaletteAtlas struct {
	used  []bool
	mutex deadlock.Mutex
}

func NewPaletteAtlas(capacity int) *PaletteAtlas {
	return &PaletteAtlas{
		used: make([]bool, capacity),
	}
}

func (a *PaletteAtlas) Allocate() (int, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for slot, used := range a.used {
		if used {
			continue
		}
		a.used[slot] = true
		return slot, nil
	}

	return -1, ErrAtlasFull
}

func (a *PaletteAtlas) Free(slot int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if slot < 0 || slot >= len(a.used) {
		return
	}
	a.used[slot] = false
}

func (a *PaletteAtlas) InUse() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	count := 0
	for _, used := range a.used {
		if used {
			count++
		}
	}
	return count
}
