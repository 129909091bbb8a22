package event

import (
	"context"
	"strconv"
	"sync"
)

const (
	SearchIndex = "catalog-items"

	searchMapping = `{
		"mappings": {
			"properties": {
				"id": { "type": "long" },
				"name": { "type": "text" },
				"category": { "type": "keyword" },
				"price": { "type": "double" },
				"timestamp": { "type": "date" }
			}
		}
	}`
)

// DocumentIndexer is the subset of the search client the index channel needs.
type DocumentIndexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
}

// SearchChannel keeps a search index in step with the catalog.
type SearchChannel struct {
	indexer DocumentIndexer
	index   string

	mu    sync.Mutex
	ready bool
}

func NewSearchChannel(indexer DocumentIndexer, index string) *SearchChannel {
	if index == "" {
		index = SearchIndex
	}
	return &SearchChannel{indexer: indexer, index: index}
}

func (c *SearchChannel) Name() string { return "search" }

func (c *SearchChannel) Dispatch(ctx context.Context, ev MutationEvent) error {
	if err := c.ensureIndex(ctx); err != nil {
		return err
	}

	id := strconv.FormatInt(ev.Item.ID, 10)
	if ev.Kind == Deleted {
		return c.indexer.Delete(ctx, c.index, id)
	}
	return c.indexer.Index(ctx, c.index, id, ev.Payload())
}

// ensureIndex creates the index on first use and retries on later events if that failed.
func (c *SearchChannel) ensureIndex(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}
	if err := c.indexer.CreateIndex(ctx, c.index, searchMapping); err != nil {
		return err
	}
	c.ready = true
	return nil
}
