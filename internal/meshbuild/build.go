package meshbuild

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/fsutil"
	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/internal/script"
	"github.com/Faultbox/assetforge/pkg/records"
)

// LoadSource opens an asset file as a record source. The loader is chosen by
// extension: .lua runs in session, .yaml and .yml are decoded directly.
func LoadSource(session *script.Session, path string) (records.Source, records.Value, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		if session == nil {
			return nil, nil, errors.New("lua asset without a script session")
		}
		return session.Load(path)
	case ".yaml", ".yml":
		return records.LoadYAML(path)
	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnsupportedSource, filepath.Ext(path))
	}
}

// BuildFile packs the asset at sourcePath and writes it to targetPath. The
// target is replaced atomically; on failure it is left untouched. A nil session
// opens a private one for Lua sources.
func (p *Packer) BuildFile(session *script.Session, sourcePath, targetPath string) error {
	log := logger.Named("meshbuild").With(zap.String("source", sourcePath))

	if session == nil && strings.EqualFold(filepath.Ext(sourcePath), ".lua") {
		session = script.Open()
		defer session.Close()
	}

	src, root, err := LoadSource(session, sourcePath)
	if err != nil {
		if errors.Is(err, ErrUnsupportedSource) {
			return &BuildError{Path: sourcePath, Kind: ErrUnsupportedSource,
				Err: fmt.Errorf("extension %q", filepath.Ext(sourcePath))}
		}
		return &BuildError{Path: sourcePath, Kind: ErrSourceFailed, Err: err}
	}

	mesh, err := p.Mesh(src, root)
	if err != nil {
		return withPath(err, sourcePath)
	}
	log.Debug("mesh walked",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("indices", len(mesh.Indices)),
		zap.Bool("mirrored", p.opts.Mirrored),
	)

	err = fsutil.WriteFile(targetPath, 0644, func(w io.Writer) error {
		_, err := mesh.WriteTo(w)
		return err
	})
	if err != nil {
		return &BuildError{Path: targetPath, Kind: ErrWriteFailed, Err: err}
	}

	log.Info("mesh built", zap.String("target", targetPath), zap.Int("bytes", mesh.Size()))
	return nil
}

func withPath(err error, path string) error {
	var buildErr *BuildError
	if errors.As(err, &buildErr) && buildErr.Path == "" {
		buildErr.Path = path
	}
	return err
}
