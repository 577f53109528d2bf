// Package queue provides the crawl frontier: a FIFO queue of candidate URLs.
package queue

// Frontier is an ordered FIFO queue of candidate URLs. Duplicates are allowed
// at enqueue time; the crawl controller deduplicates against its visited set
// when an item is popped. The crawl is single-threaded, so no locking.
type Frontier struct {
	items []string
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends a URL to the back of the frontier.
func (f *Frontier) Push(url string) {
	f.items = append(f.items, url)
}

// PushAll appends URLs in order, preserving their relative discovery order.
func (f *Frontier) PushAll(urls []string) {
	f.items = append(f.items, urls...)
}

// Pop removes and returns the URL at the front of the frontier.
// Returns false when the frontier is empty, which terminates the crawl.
func (f *Frontier) Pop() (string, bool) {
	if len(f.items) == 0 {
		return "", false
	}
	url := f.items[0]
	f.items = f.items[1:]
	return url, true
}

// Len returns the number of queued URLs, duplicates included.
func (f *Frontier) Len() int {
	return len(f.items)
}
