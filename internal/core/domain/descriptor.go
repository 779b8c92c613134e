package domain

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ServerDescriptor declares one tool server from the configuration document.
type ServerDescriptor struct {
	ID               string
	Command          string
	Args             []string
	WorkingDirectory string
	Env              map[string]string
}

// Fingerprint returns the content-hash identity of the descriptor.
// Two descriptors with the same launch parameters have the same fingerprint
// regardless of environment map order, which lets reloads match old and new
// descriptors by content rather than by declaration order.
func (d ServerDescriptor) Fingerprint() string {
	h := xxhash.New()
	_, _ = h.WriteString(d.ID)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(d.Command)
	for _, a := range d.Args {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(a)
	}
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(d.WorkingDirectory)

	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(k)
		_, _ = h.WriteString("=")
		_, _ = h.WriteString(d.Env[k])
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

// OperationDescriptor identifies one callable operation in the catalog.
type OperationDescriptor struct {
	Server      string
	Name        string
	Description string
}
