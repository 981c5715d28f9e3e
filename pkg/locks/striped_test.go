package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripedSameKeySameLock(t *testing.T) {
	s := NewStriped(8)
	assert.Same(t, s.For("session-a"), s.For("session-a"))
	assert.Len(t, NewStriped(0).stripes, defaultStripes)
}

func TestStripedSerialisesWriters(t *testing.T) {
	s := NewStriped(4)
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := s.For("session-a")
			l.Lock()
			counter++
			l.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
