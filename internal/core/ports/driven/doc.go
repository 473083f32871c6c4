// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Parser: Extracts structural primitives from one document format
//   - ParserRegistry: Selects the appropriate parser per file type
//   - ProfileStore: Document profile persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - OCRService: Visual element probing. Without it, image-table
//     detection keeps the geometric heuristic verdict.
//   - LLMService: Layout classification. Without it, classification
//     uses the geometric strategy.
//   - ProfileIndex: Fast existence checks for incremental runs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or parser package
package driven
