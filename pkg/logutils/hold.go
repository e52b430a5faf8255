package logutils

import (
	"bytes"
	"io"
	"sync"
)

// heldWriter keeps everything written to it in memory.
type heldWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (h *heldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(p)
}

func (h *heldWriter) flush(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf.Len() == 0 {
		return nil
	}
	_, err := h.buf.WriteTo(w)
	return err
}

// Hold redirects s into memory until the returned release func is called,
// which restores the previous target and writes the held output to it.
// Interactive prompts use it so log lines do not tear through the form.
func (s *SwitchWriter) Hold() (release func() error) {
	held := &heldWriter{}
	prev := s.Set(held)

	var once sync.Once
	var err error
	return func() error {
		once.Do(func() {
			s.Set(prev)
			err = held.flush(prev)
		})
		return err
	}
}
