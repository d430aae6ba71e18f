// Package worker turns persisted budget snapshots into exported
// reports. It reacts to snapshot-saved messages and also sweeps all
// profiles periodically as a backup in case messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pockets/internal/amqp"
	"pockets/internal/core"
	"pockets/internal/engine"
	"pockets/internal/export"
	"pockets/internal/storage"
)

// ExportWorker loads snapshots from storage and writes monthly reports
// through one or more writers.
type ExportWorker struct {
	storage *storage.SQLiteRepository
	writers []export.ReportWriter
}

func NewExportWorker(storage *storage.SQLiteRepository, writers ...export.ReportWriter) *ExportWorker {
	return &ExportWorker{
		storage: storage,
		writers: writers,
	}
}

// HandleSnapshotSaved processes a single snapshot-saved message. The
// exact revision from the message is exported, not whatever happens to
// be latest by the time the worker gets to it.
func (w *ExportWorker) HandleSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	slog.InfoContext(ctx, "Processing snapshot message",
		"profile", msg.Profile,
		"revision", msg.Revision)

	state, revision, err := w.storage.LoadRevision(ctx, msg.Profile, msg.Revision)
	if err != nil {
		return fmt.Errorf("load snapshot revision: %w", err)
	}
	if state == nil {
		// Pruned between publish and consume. Nothing to export.
		slog.WarnContext(ctx, "Snapshot revision no longer exists, skipping",
			"profile", msg.Profile,
			"revision", msg.Revision)
		return nil
	}

	return w.exportState(ctx, msg.Profile, revision, state)
}

// SweepAll exports the latest snapshot of every known profile.
func (w *ExportWorker) SweepAll(ctx context.Context) error {
	profiles, err := w.storage.Profiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	if len(profiles) == 0 {
		return nil
	}

	var firstErr error
	for _, profile := range profiles {
		state, revision, err := w.storage.Load(ctx, profile)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load profile during sweep",
				"profile", profile, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if state == nil {
			continue
		}
		if err := w.exportState(ctx, profile, revision, state); err != nil {
			slog.ErrorContext(ctx, "Failed to export profile during sweep",
				"profile", profile, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// StartupCheck runs one sweep at worker startup. This recovers from
// messages missed while the worker was down.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup export sweep")
	if err := w.SweepAll(ctx); err != nil {
		return fmt.Errorf("startup sweep: %w", err)
	}
	slog.InfoContext(ctx, "Startup export sweep completed")
	return nil
}

func (w *ExportWorker) exportState(ctx context.Context, profile string, revision int64, state *core.BudgetState) error {
	eng := engine.Load(state)

	reports, err := export.BuildAllReports(eng, profile)
	if err != nil {
		return fmt.Errorf("build reports: %w", err)
	}

	written := 0
	for _, r := range reports {
		for _, writer := range w.writers {
			ref, err := writer.WriteMonthlyReport(ctx, r)
			if err != nil {
				return fmt.Errorf("write report for %s: %w", r.Month, err)
			}
			slog.InfoContext(ctx, "Report exported",
				"profile", profile,
				"revision", revision,
				"month", string(r.Month),
				"ref", ref)
			written++
		}
	}

	slog.InfoContext(ctx, "Snapshot exported",
		"profile", profile,
		"revision", revision,
		"reports", written)

	return nil
}
