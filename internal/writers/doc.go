// Package writers turns screened variant sets into serialized outputs.
//
// Design:
//   • Writers own all presentation knowledge (TSV, JSON, JSONL).
//   • Stages stay domain-only; the screening pipeline stays orchestration-only.
//   • JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
