package policy

import (
	"os"
	"time"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// overridesFile is the YAML schema of the overrides document, read from
// domain.PolicyOverridesFileName next to the configuration.
type overridesFile struct {
	Operations map[string]overrideDTO `yaml:"operations"`
}

type overrideDTO struct {
	Cacheable *bool  `yaml:"cacheable"`
	TTL       string `yaml:"ttl"`
}

// ttlDuration parses the DTO's TTL as a Go duration string ("30s", "5m").
func (d overrideDTO) ttlDuration() (time.Duration, error) {
	if d.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(d.TTL)
	if err != nil {
		return 0, zerr.Wrap(err, "invalid ttl")
	}
	if ttl < 0 {
		return 0, zerr.Wrap(domain.ErrPolicyOverrideInvalid, "ttl must not be negative")
	}
	return ttl, nil
}

// ApplyOverrides loads the overrides file at path and applies it to the
// classifier's table. A missing file is not an error.
//
// Overrides may tune TTLs of cacheable operations and may declare additional
// read-only operations as TTL-cacheable. They may never mark a built-in
// mutating operation cacheable: the default-deny invariant outranks
// configuration.
func (c *Classifier) ApplyOverrides(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read policy overrides"), "path", path)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse policy overrides"), "path", path)
	}

	for name, dto := range file.Operations {
		if err := c.applyOverride(name, dto); err != nil {
			return zerr.With(err, "operation", name)
		}
	}
	return nil
}

func (c *Classifier) applyOverride(name string, dto overrideDTO) error {
	ttl, err := dto.ttlDuration()
	if err != nil {
		return err
	}

	current, known := c.table[name]

	if known && !current.Cacheable {
		// Built-in mutating operations are frozen.
		if dto.Cacheable != nil && *dto.Cacheable {
			return domain.ErrPolicyOverrideInvalid
		}
		return nil
	}

	if !known {
		// New operations may only opt in to TTL caching.
		if dto.Cacheable == nil || !*dto.Cacheable {
			return nil
		}
		current = domain.OperationPolicy{
			Name:         name,
			Cacheable:    true,
			Invalidation: domain.InvalidationTTL,
			TTL:          domain.DefaultTTL,
		}
	}

	if dto.Cacheable != nil && !*dto.Cacheable {
		current.Cacheable = false
		current.Invalidation = domain.InvalidationNone
		c.table[name] = current
		return nil
	}

	if ttl > 0 && current.Invalidation == domain.InvalidationTTL {
		current.TTL = min(ttl, domain.MaxTTL)
	}

	c.table[name] = current
	return nil
}
