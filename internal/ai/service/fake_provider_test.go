package service_test

import (
	"context"
	"sync"

	"codefix/internal/ai/provider"
)

type fakeProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	reqs  []provider.Request
}

func (f *fakeProvider) Complete(_ context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func (f *fakeProvider) last() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return provider.Request{}
	}
	return f.reqs[len(f.reqs)-1]
}
