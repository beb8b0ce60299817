package history

import (
	"context"
	"fmt"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/kv"
)

// Purger removes conversation slots without loading them; the registry uses
// it to clean up after a document deletion.
type Purger struct {
	kv kv.Store
}

func NewPurger(store kv.Store) *Purger {
	return &Purger{kv: store}
}

func (p *Purger) PurgeConversation(ctx context.Context, documentID string) error {
	if err := p.kv.Delete(ctx, SlotKey(documentID)); err != nil {
		return fmt.Errorf("purge conversation %s: %w", documentID, err)
	}
	return nil
}
