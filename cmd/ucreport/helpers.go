package main

import (
	"fmt"

	"ucreport/internal/dataset"
	"ucreport/internal/model"
	"ucreport/internal/reference"
	"ucreport/internal/report"
)

// openModel opens the configured dataset and wraps it in a model. The
// caller owns the returned store and must close it.
func openModel() (*dataset.Store, *model.Model, error) {
	store, err := dataset.Open(cfg.Dataset.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset %s: %w", cfg.Dataset.Path, err)
	}
	return store, model.New(store), nil
}

// newBuilder assembles the report builder from config.
func newBuilder(calc report.Calculator) (*report.Builder, error) {
	ref := reference.Default()
	if err := ref.Apply(cfg.Reference); err != nil {
		return nil, err
	}
	opts := report.Options{
		WorkingAgeMin:               cfg.Analysis.WorkingAgeMin,
		WorkingAgeMax:               cfg.Analysis.WorkingAgeMax,
		ChildAgeLimit:               cfg.Analysis.ChildAgeLimit,
		SubstantialChildcareMonthly: cfg.Analysis.SubstantialChildcareMonthly,
		ClosePct:                    cfg.Analysis.CloseMatchPct,
		ModeratePct:                 cfg.Analysis.ModerateDiffPct,
	}
	return report.NewBuilder(calc, ref, opts, logger), nil
}
