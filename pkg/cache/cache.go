// Package cache provides pluggable caching for computed layouts and
// rendered artifacts.
//
// The layout pipeline (pkg/bpmn/pipeline) is a pure function of its input
// graph and options, which makes it naturally cacheable: the same graph
// hash plus the same layout options always produces the same diagram, and
// the same diagram plus the same output format always produces the same
// bytes. Implementations range from NullCache (disabled) through FileCache
// (single-process CLI use) to a Redis-backed cache for multi-instance API
// deployments.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs for each pipeline stage's cache entries.
const (
	TTLLayout   = 6 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is the storage interface used by the CLI's layout/render commands
// and by pkg/httpapi; the pipeline orchestrator itself does not use it.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. hit is false if the key is absent or expired.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores a value with a TTL. A zero TTL means "never expires".
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. It is not an error if the key doesn't exist.
	Delete(ctx context.Context, key string) error
	// Close releases any resources (connections, file handles) held by the cache.
	Close() error
}

// LayoutKeyOpts captures the layout options that affect the computed
// diagram, so that two otherwise-identical graphs laid out with different
// options don't collide in the cache.
type LayoutKeyOpts struct {
	HorizontalGap      float64
	VerticalGap        float64
	BoundaryEventGap   float64
	ContainerPadding   float64
	MergeLayerGap      float64
	EndLayerGap        float64
	DeadEndLayerGap    float64
	Compact            bool
	CompactDependency  bool
	RefineWithSolver   bool
}

// ArtifactKeyOpts captures the rendering options for a serialized artifact
// derived from an already-computed diagram.
type ArtifactKeyOpts struct {
	Format string // "xml", "debug-dot", "debug-svg", "json"
}

// Keyer generates cache keys for the pipeline's cacheable stages.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation, hashing the options
// struct alongside the upstream content hash.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey(fmt.Sprintf("layout:%s", graphHash), opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", layoutHash), opts)
}
