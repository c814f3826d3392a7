// Package operations runs a fuel-price analysis as a fixed sequence of steps.
//
// Core Components:
//
// Manager: executes the registered steps in order against one RunState.
// The first failing step stops the run and the remaining steps are marked
// skipped. Cancellation of the context is honoured between steps.
//
// Step: a single unit of work. Each step validates that the fields it needs
// are present on the RunState, then fills in its own.
//
// Registry: keeps the steps in registration order.
//
// RunState: the data a run carries from the input file to its artifacts,
// plus the per-step status and timing.
//
// The analysis steps are:
//
//	load       read and validate the input spreadsheet
//	derive     time index, break indicator, interaction, Brent in BRL
//	estimate   one OLS intervention model per fuel
//	summarize  descriptive statistics, correlations and the report tables
//	render     four charts and five table images
//	export     CSV, XLSX and JSON exports followed by manifest.json
//
// Every step runs inside an OpenTelemetry span and its duration is recorded
// through the run's AnalysisMetrics.
package operations
