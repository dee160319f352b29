package errors

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())
	assert.Zero(t, c.Count())

	c.Add("a.html", "read", errors.New("no such file"))
	c.Add("b.html", "transform", errors.New("boom"))
	c.Add("a.html", "write", errors.New("denied"))
	c.Add("ignored.html", "read", nil)

	assert.True(t, c.HasErrors())
	assert.Equal(t, 3, c.Count())
	assert.Len(t, c.ByFile("a.html"), 2)
	assert.Len(t, c.ByFile("missing.html"), 0)

	all := c.All()
	assert.Len(t, all, 3)
	assert.Equal(t, "a.html: read: no such file", all[0].Error())

	c.Clear()
	assert.False(t, c.HasErrors())
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add("f.html", "read", errors.New("err"))
			_ = c.Count()
			_ = c.All()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Count())
}
