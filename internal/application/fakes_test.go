package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type sentMessage struct {
	To, Title, Body string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMessage{To: to, Title: title, Body: body})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

type sequenceCodes struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceCodes) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("code-%d", s.n)
}

var errSMTPDown = errors.New("smtp down")
