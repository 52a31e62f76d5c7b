package domain

import "errors"

var (
	// ErrUnresolvedBuildingName means no building alias matched the report's
	// source id. The report is skipped and counted; it never aborts a batch.
	ErrUnresolvedBuildingName = errors.New("unresolved building name")

	// ErrReportTooLarge means the report exceeded the parser's line limit.
	ErrReportTooLarge = errors.New("report too large")

	// ErrBuildingNotFound is returned by a BuildingStore when no document
	// matches the requested name and year.
	ErrBuildingNotFound = errors.New("building not found")
)
