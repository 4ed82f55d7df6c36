package transform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/keypath"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/template"
)

// Save writes the configuration to dir/filename and returns it unchanged.
//
// The format follows the filename extension (.yaml, .yml or .json).
// The filename may contain ${a.b} placeholders, expanded from the
// configuration being saved. The write is a single os.WriteFile; it is not
// atomic.
type Save struct {
	dir       string
	filename  string
	format    config.Format
	indent    int
	createDir bool
	perm      os.FileMode
	expander  *template.Expander
}

// SaveOption configures a Save.
type SaveOption func(*Save)

// WithCreateDir creates the target directory (and parents) when missing.
func WithCreateDir() SaveOption {
	return func(s *Save) {
		s.createDir = true
	}
}

// WithIndent sets the indentation width. Default: config.DefaultIndent.
func WithIndent(n int) SaveOption {
	return func(s *Save) {
		s.indent = n
	}
}

// WithFormat forces a format regardless of the filename extension.
func WithFormat(f config.Format) SaveOption {
	return func(s *Save) {
		s.format = f
	}
}

// WithFileMode sets the permissions of the written file. Default: 0644.
func WithFileMode(perm os.FileMode) SaveOption {
	return func(s *Save) {
		s.perm = perm
	}
}

// NewSave creates a Save into dir/filename.
func NewSave(dir, filename string, opts ...SaveOption) (*Save, error) {
	if filename == "" {
		return nil, cerrors.Errorf(cerrors.KindValue, "save needs a filename")
	}
	if filepath.Base(filename) != filename {
		return nil, cerrors.Errorf(cerrors.KindValue, "save filename %q must not contain a directory", filename)
	}
	s := &Save{
		dir:      dir,
		filename: filename,
		indent:   config.DefaultIndent,
		perm:     0o644,
		expander: template.NewExpander(template.WithMissingAction(template.MissingError)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.format == "" {
		f, err := config.FormatFromPath(filename)
		if err != nil {
			return nil, err
		}
		s.format = f
	}
	return s, nil
}

// Dir returns the target directory.
func (s *Save) Dir() string { return s.dir }

// Filename returns the filename pattern.
func (s *Save) Filename() string { return s.filename }

// Format returns the output format.
func (s *Save) Format() config.Format { return s.format }

// Name implements Transform.
func (s *Save) Name() string { return "save(" + filepath.Join(s.dir, s.filename) + ")" }

// Keys implements Transform: the paths read by filename placeholders.
func (s *Save) Keys() []keypath.Path {
	return appendUnique(nil, template.Placeholders(s.filename)...)
}

// Target returns the file path cfg would be written to.
func (s *Save) Target(cfg map[string]any) (string, error) {
	name, err := s.expander.Expand(s.filename, cfg)
	if err != nil {
		return "", fmt.Errorf("save filename: %w", err)
	}
	if name == "" || filepath.Base(name) != name {
		return "", cerrors.Errorf(cerrors.KindValue, "save filename %q expands to invalid name %q", s.filename, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Apply implements Transform.
func (s *Save) Apply(cfg map[string]any) (map[string]any, error) {
	cfg = prepare(cfg)

	path, err := s.Target(cfg)
	if err != nil {
		return nil, err
	}

	if s.createDir && s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", cerrors.ErrIO, s.dir, err)
		}
	}

	data, err := config.Marshal(cfg, s.format, config.EncodeOptions{Indent: s.indent})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, s.perm); err != nil {
		return nil, fmt.Errorf("%w: write %s: %w", cerrors.ErrIO, path, err)
	}
	return cfg, nil
}
