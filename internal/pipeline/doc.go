// Package pipeline fans chromosome partitions out to a Screener and merges
// the annotated partitions back in first-encountered chromosome order.
//
// The only contract to implement is Screener (ScreenPartition).
// This keeps the coordinator swappable and testable.
package pipeline
