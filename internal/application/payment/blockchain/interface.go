package blockchain

import "context"

// ChainInfo reads public chain state from the indexing service.
type ChainInfo interface {
	// TipHeight returns the height of the best block.
	TipHeight(ctx context.Context) (int64, error)
}
