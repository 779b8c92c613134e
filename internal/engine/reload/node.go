package reload

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relay/internal/adapters/logger"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/registry"
)

// NodeID is the unique identifier for the reload coordinator Graft node.
const NodeID graft.ID = "engine.reload"

func init() {
	graft.Register(graft.Node[*Coordinator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{registry.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Coordinator, error) {
			reg, err := graft.Dep[ports.Registry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewCoordinator(reg, NewStream(), log), nil
		},
	})
}
