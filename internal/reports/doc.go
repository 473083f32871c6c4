// Package reports writes run artifacts to disk: JSON and CSV views of
// a corpus analysis, the JSONL query set with its manifest, and the
// flat file inventory. Writers are plain functions over the driving
// port result types; they never reach back into stores.
package reports
