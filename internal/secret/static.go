package secret

import (
	"context"
	"maps"
	"sync"

	"vinr.eu/kubesecrets/internal/errs"
)

// StaticFetcher serves records from memory. It counts calls per name, which
// makes it the mock backend for tests and dry runs.
type StaticFetcher struct {
	mu      sync.Mutex
	records map[string]Record
	calls   map[string]int
}

func NewStaticFetcher(records map[string]Record) *StaticFetcher {
	return &StaticFetcher{
		records: maps.Clone(records),
		calls:   make(map[string]int),
	}
}

func (f *StaticFetcher) Fetch(_ context.Context, name string) (Decoded, error) {
	f.mu.Lock()
	f.calls[name]++
	record, ok := f.records[name]
	f.mu.Unlock()
	if !ok {
		return nil, errs.WrapMsg(ErrLookupFailed, `secrets "`+name+`" not found`)
	}
	return Decode(record)
}

func (f *StaticFetcher) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}
