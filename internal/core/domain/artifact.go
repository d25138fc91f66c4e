package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Artifact naming.
const (
	// ArtifactExt is the extension of every workbook the pipeline writes.
	ArtifactExt = ".xlsm"

	// SuffixRerun is appended to the source stem by Stage 1.
	SuffixRerun = "_Re-run"

	// SuffixFinal is appended to the source stem by Stage 2.
	SuffixFinal = "_Final"
)

// SourceFile is the main input workbook chosen for Stage 1.
// Stage 2 reads it again to rebuild both derived names.
type SourceFile struct {
	// Path is the full path as chosen by the user.
	Path string

	// Folder is the directory containing Path.
	Folder string

	// Stem is the file name without its extension.
	Stem string
}

// NewSourceFile splits a user-chosen path into folder and stem.
func NewSourceFile(path string) (SourceFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SourceFile{}, fmt.Errorf("%w: empty source path", ErrInvalidInput)
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// Dot-files such as ".xlsm" have no extension of their own.
		stem = base
	}

	return SourceFile{
		Path:   path,
		Folder: filepath.Dir(path),
		Stem:   stem,
	}, nil
}

// Name returns the base name of the source workbook.
func (s SourceFile) Name() string {
	return filepath.Base(s.Path)
}

// Derive computes the artifact with the given suffix inside the source folder.
func (s SourceFile) Derive(suffix string) DerivedArtifact {
	name := s.Stem + suffix + ArtifactExt
	return DerivedArtifact{
		Path:   filepath.Join(s.Folder, name),
		Name:   name,
		Suffix: suffix,
	}
}

// RerunArtifact returns the Stage 1 output path.
func (s SourceFile) RerunArtifact() DerivedArtifact {
	return s.Derive(SuffixRerun)
}

// FinalArtifact returns the Stage 2 output path.
// It is always derived from the original source stem, never from the
// Re-run file name.
func (s SourceFile) FinalArtifact() DerivedArtifact {
	return s.Derive(SuffixFinal)
}

// DerivedArtifact is an output workbook whose name is computed from a
// source stem plus a fixed suffix.
type DerivedArtifact struct {
	// Path is the full output path.
	Path string

	// Name is the output file name.
	Name string

	// Suffix is the suffix that was appended to the stem.
	Suffix string
}

// IsZero reports whether the artifact has not been computed.
func (a DerivedArtifact) IsZero() bool {
	return a.Path == ""
}
