package fs

import (
	"context"

	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/grindlemire/graft"
)

const (
	// WalkerNodeID is the unique identifier for the Walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// SnapshotterNodeID is the unique identifier for the Snapshotter Graft node.
	SnapshotterNodeID graft.ID = "adapter.fs.snapshotter"
)

func init() {
	// Walker Node (concrete implementation needed by Snapshotter)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	// Snapshotter Node
	graft.Register(graft.Node[ports.InputSnapshotter]{
		ID:        SnapshotterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.InputSnapshotter, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewSnapshotter(walker), nil
		},
	})
}
