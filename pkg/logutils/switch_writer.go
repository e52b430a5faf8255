package logutils

import (
	"io"
	"sync"
)

// SwitchWriter is an io.Writer whose target can be swapped at runtime.
// Loggers built on top of it follow the swap, which lets a full-screen
// program take over the terminal and re-home log output while it runs.
type SwitchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

// NewSwitchWriter returns a SwitchWriter targeting w.
func NewSwitchWriter(w io.Writer) *SwitchWriter {
	return &SwitchWriter{w: w}
}

func (s *SwitchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	w := s.w
	s.mu.RUnlock()
	return w.Write(p)
}

// Set atomically replaces the target writer and returns the previous one.
func (s *SwitchWriter) Set(w io.Writer) io.Writer {
	s.mu.Lock()
	prev := s.w
	s.w = w
	s.mu.Unlock()
	return prev
}
