// Package core implements the datasheet ingestion pipeline.
//
// The package turns an external file of unknown shape into validated
// inventory tables. It has no UI or storage dependencies; the CLI, the
// HTTP server and tests all drive it through [Service].
//
// # Pipeline
//
// Every table found in a file flows through the same stages:
//
//  1. Parse: a [Registry] dispatches on file extension and returns
//     [RawTable] values. Delimiters are guessed with [DetectDelimiter] and
//     header rows with [LooksLikeHeader].
//  2. Map: [MapToInventory] picks the id, name, quantity and price columns
//     with [GuessColumnFor] and keeps every other column as meta_<slug>.
//  3. Sanitize: [Sanitize] trims text and coerces quantity and price with
//     [ParseNumberLike], logging each column's outcome.
//  4. Validate: [Validate] reports errors and warnings as data.
//  5. Auto-fix: [AutoFix] fills placeholders, rounds numbers and inserts
//     default columns, then the table is validated again.
//  6. Persist: a [Persister] writes the table, unless the run is a dry run.
//
// [Service.PreviewAndAnalyze] stops after step 4 and never writes.
// [Service.ProcessAndImport] runs every step and returns an [ImportReport]
// with one [TableReport] per table.
//
// # Cells
//
// Cells are [Value]s: Missing, Number or Text. Stages switch on
// [Value.Kind] rather than inspecting dynamic types.
//
// # Error Handling
//
// Only [ErrNotFound] and [ErrUnsupportedFormat] abort a run. A parser that
// cannot read structure falls back to a one-column text table and marks
// the table with an error wrapping [ErrParseDegraded]. Cells that fail
// numeric coercion keep their original value and are flagged by
// validation. Persistence failures are recorded per table.
//
// Technical errors are mapped to user-friendly messages using [MapError].
package core
