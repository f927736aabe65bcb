package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kubev2v/transfer-agent/internal/models"
	"github.com/kubev2v/transfer-agent/internal/store"
	"github.com/kubev2v/transfer-agent/pkg/job"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

const reportSheet = "Forms"

var reportHeader = []any{"Form ID", "Name", "Source", "Files", "Bytes", "Last pulled"}

// ReportRow is one line of the export report.
type ReportRow struct {
	Form  models.FormMetadata
	Files int
	Bytes int64
}

// ExportService writes a spreadsheet describing the pulled forms.
type ExportService struct {
	store      *store.Store
	scheduler  *scheduler.Scheduler
	storageDir string
}

// NewExportService returns an ExportService. A nil s runs the measurements on
// the default job scheduler.
func NewExportService(st *store.Store, s *scheduler.Scheduler, storageDir string) *ExportService {
	return &ExportService{store: st, scheduler: s, storageDir: storageDir}
}

// Rows measures the stored copy of every known form, one job per form.
// Rows come back in the order of the store. Once ctx is done the
// measurements stop and the error of ctx is returned.
func (e *ExportService) Rows(ctx context.Context) ([]ReportRow, error) {
	forms, err := e.store.Forms().List(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]job.Job[ReportRow], 0, len(forms))
	for _, f := range forms {
		dir := formStorageDir(e.storageDir, f.ID)
		jobs = append(jobs, job.Supply(func(rs *job.RunnerStatus) (ReportRow, error) {
			files, bytes, err := measure(rs, dir)
			if err != nil {
				return ReportRow{}, fmt.Errorf("failed to measure form %s: %w", f.ID, err)
			}
			return ReportRow{Form: f, Files: files, Bytes: bytes}, nil
		}))
	}

	return job.LaunchSyncAll(jobs, job.WithScheduler(e.scheduler), job.WithContext(ctx))
}

// Export writes the report to path and returns the number of forms in it.
func (e *ExportService) Export(ctx context.Context, path string) (int, error) {
	rows, err := e.Rows(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.S().Named("export_service").Warnw("failed to close report", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return 0, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		lastPulled := ""
		if !r.Form.LastPulledAt.IsZero() {
			lastPulled = r.Form.LastPulledAt.Format("2006-01-02 15:04:05")
		}
		row := []any{r.Form.ID, r.Form.Name, r.Form.Source, r.Files, r.Bytes, lastPulled}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return 0, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	zap.S().Named("export_service").Infow("report exported", "path", path, "forms", len(rows))
	return len(rows), nil
}

// measure counts the files under dir. A missing dir counts as empty.
func measure(rs *job.RunnerStatus, dir string) (int, int64, error) {
	var files int
	var bytes int64
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if !rs.IsStillRunning() {
			return filepath.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, bytes, err
}
