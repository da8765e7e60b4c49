package assetbuild

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/config"
	"github.com/Faultbox/assetforge/internal/fsutil"
	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/internal/meshbuild"
	"github.com/Faultbox/assetforge/internal/script"
	"github.com/Faultbox/assetforge/pkg/formats"
)

// ErrUnknownBuilder is returned for a job whose type has no registered builder.
var ErrUnknownBuilder = errors.New("no builder registered for asset type")

// Worker is the per-goroutine state handed to builders.
type Worker struct {
	ID      int
	Session *script.Session
}

// Builder turns one job's source into its target.
type Builder interface {
	Build(w *Worker, job Job) error
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(w *Worker, job Job) error

func (f BuilderFunc) Build(w *Worker, job Job) error {
	return f(w, job)
}

// Registry maps asset types to builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry registers the mesh and texture builders.
func DefaultRegistry(build config.BuildConfig) *Registry {
	r := NewRegistry()
	r.Register("mesh", &MeshBuilder{Winding: build.Winding})
	r.Register("texture", TextureBuilder{})
	return r
}

// Register adds or replaces the builder for typ.
func (r *Registry) Register(typ string, b Builder) {
	r.builders[typ] = b
}

// Lookup returns the builder for typ.
func (r *Registry) Lookup(typ string) (Builder, error) {
	b, ok := r.builders[typ]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBuilder, typ)
	}
	return b, nil
}

// Types returns the registered asset types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// MeshBuilder packs mesh assets. Job args may override the winding:
// "-winding mirrored".
type MeshBuilder struct {
	Winding string
}

func (b *MeshBuilder) Build(w *Worker, job Job) error {
	fs := flag.NewFlagSet(job.Source, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	winding := fs.String("winding", b.Winding, "index winding")
	if err := fs.Parse(job.Args); err != nil {
		return fmt.Errorf("%s: bad mesh arguments: %w", job.Source, err)
	}

	var opts meshbuild.Options
	switch *winding {
	case "", config.WindingForward:
	case config.WindingMirrored:
		opts.Mirrored = true
	default:
		return fmt.Errorf("%s: unknown winding %q", job.Source, *winding)
	}

	var session *script.Session
	if w != nil {
		session = w.Session
	}
	return meshbuild.NewPacker(opts).BuildFile(session, job.Source, job.Target)
}

// TextureBuilder validates a DDS texture's mip chain and copies it to the target.
type TextureBuilder struct{}

func (TextureBuilder) Build(_ *Worker, job Job) error {
	data, err := os.ReadFile(job.Source)
	if err != nil {
		return fmt.Errorf("%s: reading texture: %w", job.Source, err)
	}
	dds, err := formats.ParseDDS(data)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Source, err)
	}
	levels, err := formats.ComputeMipChain(dds.Image)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Source, err)
	}

	if err := fsutil.WriteBytes(job.Target, data, 0644); err != nil {
		return fmt.Errorf("%s: writing texture: %w", job.Target, err)
	}
	logger.Info("texture built",
		zap.String("source", job.Source),
		zap.String("target", job.Target),
		zap.Stringer("format", dds.Image.Format),
		zap.Int("levels", len(levels)),
	)
	return nil
}
