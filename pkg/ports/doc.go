// Package ports declares the interfaces the engine depends on: snapshot
// persistence and the submission transport. Adapters live under
// pkg/adapters and internal/adapters.
package ports
