// Package parsers provides implementations of the Parser interface
// for various document formats. Each parser knows how to extract
// structural primitives (pages, images, tables, charts, formulas)
// from a specific file type.
//
// Parsers are registered with the Registry at startup.
package parsers
