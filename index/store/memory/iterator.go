package memory

import "github.com/kasozi/searchengine/index"

// Static and compile-time checks to ensure the iterators implement the
// index iterator interfaces.
var (
	_ index.DocumentIterator = (*documentIterator)(nil)
	_ index.TermIterator     = (*termIterator)(nil)
)

// documentIterator is an index.DocumentIterator implementation for the
// in-memory store.
type documentIterator struct {
	// Pointer to an InMemoryStore instance. it's used here to provide
	// access to the store's mutex object.
	store        *InMemoryStore
	docs         []*index.Document
	currentIndex int
}

// Next loads the next item, returns false when no more documents
// are available or when an error occurs.
func (i *documentIterator) Next() bool {
	if i.currentIndex >= len(i.docs) {
		return false
	}

	i.currentIndex++

	return true
}

// Error returns the last error encountered by the iterator.
func (i *documentIterator) Error() error {
	return nil
}

// Close releases any resources allocated to the iterator.
func (i *documentIterator) Close() error {
	return nil
}

// Document returns the currently fetched document object.
func (i *documentIterator) Document() *index.Document {
	// The document pointer contents may be overwritten by a store update
	// outside this method. To avoid data-races, we acquire the read lock
	// first and clone creating a local pointer to the queried document.
	i.store.mu.RLock()
	defer i.store.mu.RUnlock()

	d := new(index.Document)
	*d = *i.docs[i.currentIndex-1]

	return d
}

// termIterator is an index.TermIterator implementation for the in-memory
// store.
type termIterator struct {
	store        *InMemoryStore
	terms        []*index.Term
	currentIndex int
}

// Next advances the iterator. When no terms are available or when an
// error occurs, calls to Next() return false.
func (i *termIterator) Next() bool {
	if i.currentIndex >= len(i.terms) {
		return false
	}

	i.currentIndex++

	return true
}

// Error returns the last error recorded by the iterator.
func (i *termIterator) Error() error {
	return nil
}

// Close releases any resources linked to the iterator.
func (i *termIterator) Close() error {
	return nil
}

// Term returns the currently fetched term object.
func (i *termIterator) Term() *index.Term {
	i.store.mu.RLock()
	defer i.store.mu.RUnlock()

	t := new(index.Term)
	*t = *i.terms[i.currentIndex-1]

	return t
}
