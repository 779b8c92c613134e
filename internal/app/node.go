package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relay/internal/adapters/cache"   //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/registry"
	"go.trai.ch/relay/internal/engine/reload"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			registry.NodeID,
			reload.NodeID,
			watcher.NodeID,
			cache.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			reg, err := graft.Dep[ports.Registry](ctx)
			if err != nil {
				return nil, err
			}

			coordinator, err := graft.Dep[*reload.Coordinator](ctx)
			if err != nil {
				return nil, err
			}

			configWatcher, err := graft.Dep[ports.ConfigWatcher](ctx)
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

			return New(reg, coordinator, configWatcher, resultCache, log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    application,
		Logger: log,
	}, nil
}
