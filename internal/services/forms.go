package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kubev2v/transfer-agent/internal/models"
	"github.com/kubev2v/transfer-agent/pkg/job"
)

const (
	formsDirName = "forms"
	mediaSuffix  = "-media"
)

// DiscoverForms lists the forms of an ODK Collect forms directory: every
// <id>.xml file is a form, its media lives in <id>-media. When formID is set
// only that form is returned.
func DiscoverForms(source, formID string) ([]models.Form, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read forms directory %s: %w", source, err)
	}

	var forms []models.Form
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if formID != "" && id != formID {
			continue
		}
		forms = append(forms, models.Form{ID: id, Name: id, Dir: source})
	}

	sort.Slice(forms, func(i, j int) bool { return forms[i].ID < forms[j].ID })
	return forms, nil
}

// formFiles returns the definition and media files of f, relative to f.Dir.
func formFiles(f models.Form) ([]string, error) {
	files := []string{f.ID + ".xml"}

	mediaDir := filepath.Join(f.Dir, f.ID+mediaSuffix)
	err := filepath.WalkDir(mediaDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == mediaDir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.Dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

type copyResult struct {
	Files     int
	Bytes     int64
	Cancelled bool
}

// copyForm copies f into dst, checking rs between files. A cancelled copy
// stops early and reports what was copied so far.
func copyForm(ctx context.Context, rs *job.RunnerStatus, f models.Form, dst string) (copyResult, error) {
	var res copyResult

	files, err := formFiles(f)
	if err != nil {
		return res, err
	}

	for _, rel := range files {
		if !rs.IsStillRunning() || ctx.Err() != nil {
			res.Cancelled = true
			return res, nil
		}
		n, err := copyFile(filepath.Join(f.Dir, rel), filepath.Join(dst, rel))
		if err != nil {
			return res, err
		}
		res.Files++
		res.Bytes += n
	}
	return res, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// formStorageDir is where a pulled form is stored.
func formStorageDir(storageDir, formID string) string {
	return filepath.Join(storageDir, formsDirName, formID)
}
