package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddBytesErrorsSkipped(t *testing.T) {
	s := New()
	s.AddBytes(100)
	s.AddBytes(28)
	s.AddError()
	s.AddSkipped()
	s.AddSkipped()

	out := s.String()
	assert.True(t, strings.Contains(out, "128 Bytes"))
	assert.Regexp(t, `Errors:\s+1`, out)
	assert.Regexp(t, `Skipped:\s+2`, out)
}

func TestConcurrentAddBytes(t *testing.T) {
	s := New()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				s.AddBytes(1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Contains(t, s.String(), "1000 Bytes")
}
