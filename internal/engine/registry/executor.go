package registry

import (
	"context"
	"os"
	"time"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
)

// Executor wraps dispatch of a single operation with the caching policy the
// classifier assigned to it.
type Executor struct {
	descriptor domain.OperationDescriptor
	policy     domain.OperationPolicy
	dispatcher ports.Dispatcher
	cache      ports.ResultCache
}

// NewExecutor creates an executor for one registered operation.
func NewExecutor(
	descriptor domain.OperationDescriptor,
	policy domain.OperationPolicy,
	dispatcher ports.Dispatcher,
	cache ports.ResultCache,
) *Executor {
	return &Executor{
		descriptor: descriptor,
		policy:     policy,
		dispatcher: dispatcher,
		cache:      cache,
	}
}

// Invoke runs the operation, consulting the cache when the policy allows.
// The returned hit flag reports whether the value came from the cache.
// Underlying failures propagate unchanged and are never cached.
func (e *Executor) Invoke(ctx context.Context, args map[string]any) (string, bool, error) {
	if !e.policy.Cacheable {
		value, err := e.dispatcher.Dispatch(ctx, e.descriptor.Name, args)
		return value, false, err
	}

	key := domain.CanonicalKey(e.descriptor.Name, args)

	if value, ok := e.cache.Get(key); ok {
		return value, true, nil
	}

	value, err := e.dispatcher.Dispatch(ctx, e.descriptor.Name, args)
	if err != nil {
		return "", false, err
	}

	if validity, ok := e.validity(args); ok {
		e.cache.Put(key, value, validity)
	}

	return value, false, nil
}

// validity snapshots the invalidation state for a fresh result. For
// file-backed operations the referenced path's mtime and size are captured
// at the moment the result was produced; if the path cannot be snapshotted
// the result is not cached at all, which is always safe.
func (e *Executor) validity(args map[string]any) (domain.Validity, bool) {
	switch e.policy.Invalidation {
	case domain.InvalidationFileMtime:
		path, ok := args[e.policy.PathArgument].(string)
		if !ok || path == "" {
			return domain.Validity{}, false
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return domain.Validity{}, false
		}
		return domain.MtimeValidity(path, info.ModTime(), info.Size()), true
	case domain.InvalidationTTL:
		ttl := e.policy.TTL
		if ttl <= 0 {
			ttl = domain.DefaultTTL
		}
		return domain.TTLValidity(time.Now().Add(ttl)), true
	default:
		return domain.Validity{}, false
	}
}
