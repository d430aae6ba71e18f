package worker

import (
	"context"
	"path/filepath"
	"testing"

	"pockets/internal/amqp"
	"pockets/internal/core"
	"pockets/internal/engine"
	"pockets/internal/export"
	"pockets/internal/storage"
)

type captureWriter struct {
	reports []*export.MonthlyReport
}

func (c *captureWriter) WriteMonthlyReport(_ context.Context, r *export.MonthlyReport) (string, error) {
	c.reports = append(c.reports, r)
	return "capture:" + string(r.Month), nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "pockets.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func savedState(t *testing.T, repo *storage.SQLiteRepository, profile string) int64 {
	t.Helper()
	eng := engine.New()
	cat, err := eng.UpsertCategory(core.Category{
		Name:          "Groceries",
		Type:          core.CategoryOther,
		DefaultAmount: 400,
	})
	if err != nil {
		t.Fatalf("UpsertCategory() error = %v", err)
	}
	if err := eng.EnsureMonth("2025-06"); err != nil {
		t.Fatalf("EnsureMonth() error = %v", err)
	}
	if err := eng.UpdateCategoryAmount(cat.ID, 400, "2025-06", engine.OverrideOptions{}); err != nil {
		t.Fatalf("UpdateCategoryAmount() error = %v", err)
	}
	if _, err := eng.AddTransaction(core.Transaction{
		Month:            "2025-06",
		PocketCategoryID: cat.ID,
		Type:             core.TransactionExpense,
		Amount:           55.40,
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	revision, err := repo.Save(context.Background(), profile, eng.Snapshot())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return revision
}

func TestHandleSnapshotSaved(t *testing.T) {
	repo := newTestRepo(t)
	revision := savedState(t, repo, "default")

	writer := &captureWriter{}
	w := NewExportWorker(repo, writer)

	msg := amqp.NewSnapshotSavedMessage("default", revision)
	if err := w.HandleSnapshotSaved(context.Background(), msg); err != nil {
		t.Fatalf("HandleSnapshotSaved() error = %v", err)
	}

	if len(writer.reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(writer.reports))
	}
	r := writer.reports[0]
	if r.Month != "2025-06" || r.Profile != "default" {
		t.Errorf("report = %s/%s, want default/2025-06", r.Profile, r.Month)
	}
	if r.Totals.TotalOutflow != 400 {
		t.Errorf("TotalOutflow = %v, want 400", r.Totals.TotalOutflow)
	}
}

func TestHandleSnapshotSavedMissingRevision(t *testing.T) {
	repo := newTestRepo(t)
	writer := &captureWriter{}
	w := NewExportWorker(repo, writer)

	// Never-saved revision is treated as pruned, not as a failure,
	// so the message is not requeued forever.
	msg := amqp.NewSnapshotSavedMessage("ghost", 99)
	if err := w.HandleSnapshotSaved(context.Background(), msg); err != nil {
		t.Fatalf("HandleSnapshotSaved() error = %v", err)
	}
	if len(writer.reports) != 0 {
		t.Errorf("len(reports) = %d, want 0", len(writer.reports))
	}
}

func TestSweepAll(t *testing.T) {
	repo := newTestRepo(t)
	savedState(t, repo, "alice")
	savedState(t, repo, "bob")

	writer := &captureWriter{}
	w := NewExportWorker(repo, writer)

	if err := w.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll() error = %v", err)
	}
	if len(writer.reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(writer.reports))
	}

	profiles := map[string]bool{}
	for _, r := range writer.reports {
		profiles[r.Profile] = true
	}
	if !profiles["alice"] || !profiles["bob"] {
		t.Errorf("sweep covered profiles %v, want alice and bob", profiles)
	}
}

func TestSweepAllNoProfiles(t *testing.T) {
	repo := newTestRepo(t)
	w := NewExportWorker(repo, &captureWriter{})
	if err := w.SweepAll(context.Background()); err != nil {
		t.Fatalf("SweepAll() on empty storage error = %v", err)
	}
}

func TestStartupCheck(t *testing.T) {
	repo := newTestRepo(t)
	savedState(t, repo, "default")

	writer := &captureWriter{}
	w := NewExportWorker(repo, writer)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck() error = %v", err)
	}
	if len(writer.reports) != 1 {
		t.Errorf("len(reports) = %d, want 1", len(writer.reports))
	}
}
