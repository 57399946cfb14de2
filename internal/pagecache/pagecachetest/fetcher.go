// Package pagecachetest provides an in-memory pagecache.Fetcher for tests.
package pagecachetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/JakeFAU/menufetcher/internal/pagecache"
)

// Fetcher serves fixed bodies by exact URL and 404s everything else.
type Fetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	calls  map[string]int
	served []pagecache.Request
}

// New builds a Fetcher serving pages.
func New(pages map[string]string) *Fetcher {
	f := &Fetcher{pages: map[string]string{}, errs: map[string]error{}, calls: map[string]int{}}
	for url, body := range pages {
		f.pages[url] = body
	}
	return f
}

// Set serves body at url.
func (f *Fetcher) Set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = body
	delete(f.errs, url)
}

// Fail makes fetches of url return err.
func (f *Fetcher) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

// Calls reports how many times url was fetched.
func (f *Fetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// Requests returns every request seen, in order.
func (f *Fetcher) Requests() []pagecache.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pagecache.Request(nil), f.served...)
}

// Fetch implements pagecache.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, request pagecache.Request) (pagecache.Response, error) {
	if err := ctx.Err(); err != nil {
		return pagecache.Response{}, fmt.Errorf("fetch canceled: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[request.URL]++
	f.served = append(f.served, request)
	if err, ok := f.errs[request.URL]; ok {
		return pagecache.Response{}, err
	}
	body, ok := f.pages[request.URL]
	if !ok {
		return pagecache.Response{URL: request.URL, StatusCode: http.StatusNotFound}, nil
	}
	return pagecache.Response{URL: request.URL, StatusCode: http.StatusOK, Body: []byte(body)}, nil
}
