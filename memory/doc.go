// Package memory provides the vault's Memory Store: embedding generation and an
// append-only vector index with stable identity.
//
// Architecture:
//   - Index: vector storage backend (chromem-go, persistent on disk)
//   - Embedder: text-to-vector conversion (ONNX all-MiniLM-L6-v2 offline, OpenAI-compatible API, mock for tests)
//   - Vault: assigns ids, strips absent metadata, serializes writers, orders search results
//
// Identity:
//   - Memories are named memory_<n>, n continuing from the index's entry count.
//   - The count is read once per batch under the writer lock, so a batch of N records
//     always gets N consecutive ids.
//
// Reads take a shared lock, so a search never observes half of a batch.
package memory
