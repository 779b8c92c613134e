package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relay/internal/adapters/cache"
	"go.trai.ch/relay/internal/adapters/config"
	"go.trai.ch/relay/internal/adapters/logger"
	"go.trai.ch/relay/internal/adapters/mcp"
	"go.trai.ch/relay/internal/adapters/policy"
	"go.trai.ch/relay/internal/core/ports"
)

// NodeID is the unique identifier for the registry Graft node.
const NodeID graft.ID = "engine.registry"

func init() {
	graft.Register(graft.Node[ports.Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			mcp.NodeID,
			policy.NodeID,
			cache.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.Registry, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			launcher, err := graft.Dep[ports.Launcher](ctx)
			if err != nil {
				return nil, err
			}
			classifier, err := graft.Dep[ports.Classifier](ctx)
			if err != nil {
				return nil, err
			}
			resultCache, err := graft.Dep[ports.ResultCache](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(loader, launcher, classifier, resultCache, log, "."), nil
		},
	})
}
