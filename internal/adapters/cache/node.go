package cache

import (
	"context"

	"github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/grindlemire/graft"
)

// KeyerNodeID is the unique identifier for the cache Keyer Graft node.
const KeyerNodeID graft.ID = "adapter.cache.keyer"

func init() {
	graft.Register(graft.Node[*Keyer]{
		ID:        KeyerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.SnapshotterNodeID},
		Run: func(ctx context.Context) (*Keyer, error) {
			snapshotter, err := graft.Dep[ports.InputSnapshotter](ctx)
			if err != nil {
				return nil, err
			}
			return NewKeyer(snapshotter), nil
		},
	})
}
