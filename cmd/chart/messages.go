package main

import "github.com/rxtech-lab/argo-dashboard/internal/dataset"

// DataLoadedMsg carries a freshly loaded dataset.
type DataLoadedMsg struct {
	Snapshot dataset.Snapshot
}

// LoadErrorMsg indicates the dataset could not be loaded.
type LoadErrorMsg struct {
	Err error
}
