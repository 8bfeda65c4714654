package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pcbfab/odbpcb/internal/logger"
)

// Extraction is the opened, rooted view of an ODB++ input: a directory
// that contains matrix/matrix within two levels, plus the chosen step
// directory. Close releases any scratch directory created to extract
// an archive; it is always safe to call, including on a directory
// input where it is a no-op.
type Extraction struct {
	// Root is the directory directly containing matrix/ and steps/.
	Root string
	// StepDir is the resolved steps/<name> directory.
	StepDir string

	cleanup func() error
}

// Close releases the scratch extraction directory, if any.
func (e *Extraction) Close() error {
	if e.cleanup == nil {
		return nil
	}
	return e.cleanup()
}

// Open resolves path (a directory, .tgz/.tar.gz, or .zip) into an
// Extraction rooted at its ODB++ root and the requested step (or the
// first step, sorted, if step is "").
func Open(path string, step string) (*Extraction, error) {
	base, cleanup, err := materialize(path)
	if err != nil {
		return nil, err
	}

	root, err := discoverRoot(base)
	if err != nil {
		if cleanup != nil {
			_ = cleanup()
		}
		return nil, err
	}

	matrixDir, _ := FindCI(root, "matrix")
	matrixFile, ok := FindCI(matrixDir, "matrix")
	if !ok {
		if cleanup != nil {
			_ = cleanup()
		}
		return nil, &MatrixMissingError{Path: filepath.Join(root, "matrix", "matrix"), Err: os.ErrNotExist}
	}
	if f, err := os.Open(matrixFile); err != nil {
		if cleanup != nil {
			_ = cleanup()
		}
		return nil, &MatrixMissingError{Path: matrixFile, Err: err}
	} else {
		f.Close()
	}

	stepDir, err := discoverStep(root, step)
	if err != nil {
		if cleanup != nil {
			_ = cleanup()
		}
		return nil, err
	}

	return &Extraction{Root: root, StepDir: stepDir, cleanup: cleanup}, nil
}

// ListSteps resolves path to its ODB++ root and returns the sorted
// names of its steps/ directory, without requiring any step to be
// selectable and without reading past the matrix sentinel.
func ListSteps(path string) ([]string, error) {
	base, cleanup, err := materialize(path)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	root, err := discoverRoot(base)
	if err != nil {
		return nil, err
	}

	stepsDir, ok := FindCI(root, "steps")
	if !ok {
		return nil, nil
	}
	return listDirNames(stepsDir), nil
}

// materialize returns a directory to search for the ODB++ root: path
// itself if it is already a directory, or a freshly extracted scratch
// directory otherwise.
func materialize(path string) (dir string, cleanup func() error, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		return path, nil, nil
	}

	lower := strings.ToLower(path)
	scratch, err := os.MkdirTemp("", "odbpcb-*")
	if err != nil {
		return "", nil, err
	}
	cleanupFn := func() error { return os.RemoveAll(scratch) }

	switch {
	case strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz"):
		if err := extractTarGz(path, scratch); err != nil {
			_ = cleanupFn()
			return "", nil, err
		}
	case strings.HasSuffix(lower, ".zip"):
		if err := extractZip(path, scratch); err != nil {
			_ = cleanupFn()
			return "", nil, err
		}
	default:
		_ = cleanupFn()
		return "", nil, &UnsupportedArchiveError{Path: path}
	}

	return scratch, cleanupFn, nil
}

// safeJoin joins dest and name, rejecting absolute paths and any
// traversal outside dest (the "data" extraction filter: no absolute
// paths, no symlinks or entries escaping the destination).
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry has absolute path: %s", name)
	}
	cleaned := filepath.Join(dest, name)
	if cleaned != dest && !strings.HasPrefix(cleaned, dest+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return cleaned, nil
}

func extractTarGz(path, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeSymlink, tar.TypeLink:
			logger.Debugf("archive: skipping link entry %s", hdr.Name)
			continue
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			logger.Debugf("archive: %v", err)
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

func extractZip(path, dest string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			logger.Debugf("archive: %v", err)
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			rc.Close()
			return err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			rc.Close()
			return err
		}
		out.Close()
		rc.Close()
	}
	return nil
}

// discoverRoot searches depth 0, then each immediate child, then each
// grandchild, for a case-insensitive matrix/matrix sentinel. The first
// match wins.
func discoverRoot(base string) (string, error) {
	candidates := []string{base}
	if children := listDirNames(base); children != nil {
		for _, c := range children {
			candidates = append(candidates, filepath.Join(base, c))
		}
		for _, c := range children {
			childPath := filepath.Join(base, c)
			for _, gc := range listDirNames(childPath) {
				candidates = append(candidates, filepath.Join(childPath, gc))
			}
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			continue
		}
		matrixDir, ok := FindCI(candidate, "matrix")
		if !ok {
			continue
		}
		if _, ok := FindCI(matrixDir, "matrix"); ok {
			return candidate, nil
		}
	}

	return "", &RootNotFoundError{Path: base}
}

// discoverStep sorts the steps/ directory entries and selects either
// the named step (case-insensitive) or the first one.
func discoverStep(root, step string) (string, error) {
	stepsDir, ok := FindCI(root, "steps")
	if !ok {
		return "", &StepNotFoundError{Root: root, Step: step}
	}

	names := listDirNames(stepsDir)
	if len(names) == 0 {
		return "", &StepNotFoundError{Root: root, Step: step}
	}

	if step == "" {
		return filepath.Join(stepsDir, names[0]), nil
	}

	for _, n := range names {
		if strings.EqualFold(n, step) {
			return filepath.Join(stepsDir, n), nil
		}
	}
	return "", &StepNotFoundError{Root: root, Step: step}
}
