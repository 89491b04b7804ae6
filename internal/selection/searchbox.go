package selection

import "sync"

// BoxSink observes the search box being cleared by a selection.
type BoxSink interface {
	SearchBoxCleared()
}

// SearchBox mirrors the text of the browser's search input.
type SearchBox struct {
	mu   sync.Mutex
	text string
	sink BoxSink
}

// NewSearchBox creates an empty search box. sink may be nil.
func NewSearchBox(sink BoxSink) *SearchBox {
	return &SearchBox{sink: sink}
}

// Set replaces the text.
func (b *SearchBox) Set(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Text returns the current text.
func (b *SearchBox) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Clear empties the box and notifies the sink.
func (b *SearchBox) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
	if b.sink != nil {
		b.sink.SearchBoxCleared()
	}
}
