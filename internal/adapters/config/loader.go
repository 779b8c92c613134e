// Package config provides the configuration loader for relay.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

var validServerIDRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a JSON file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Discover walks up from cwd and returns the nearest relay.json.
func (l *Loader) Discover(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

// Load parses the configuration document at path and returns the declared
// server descriptors sorted by id, so launch order is deterministic.
func (l *Loader) Load(path string) ([]domain.ServerDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(domain.ErrConfigReadFailed, "path", path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	if len(doc.Servers) == 0 {
		l.logger.Warn("configuration declares no servers: " + path)
	}

	baseDir := filepath.Dir(path)
	descriptors := make([]domain.ServerDescriptor, 0, len(doc.Servers))
	for id, dto := range doc.Servers {
		desc, err := l.buildDescriptor(id, dto, baseDir)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, desc)
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})

	return descriptors, nil
}

func (l *Loader) buildDescriptor(id string, dto serverDTO, baseDir string) (domain.ServerDescriptor, error) {
	if !validServerIDRegex.MatchString(id) {
		return domain.ServerDescriptor{}, zerr.With(domain.ErrConfigInvalid, "server", id)
	}
	if dto.Command == "" {
		err := zerr.Wrap(domain.ErrConfigInvalid, "server is missing a command")
		return domain.ServerDescriptor{}, zerr.With(err, "server", id)
	}

	workingDir := dto.WorkingDirectory
	if workingDir == "" {
		workingDir = baseDir
	} else if !filepath.IsAbs(workingDir) {
		// Relative working directories resolve against the config location,
		// not the process cwd, so a config behaves the same from anywhere.
		workingDir = filepath.Join(baseDir, workingDir)
	}

	return domain.ServerDescriptor{
		ID:               id,
		Command:          dto.Command,
		Args:             append([]string(nil), dto.Args...),
		WorkingDirectory: workingDir,
		Env:              copyEnv(dto.Env),
	}, nil
}

func copyEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	copied := make(map[string]string, len(env))
	for k, v := range env {
		copied[k] = v
	}
	return copied
}
