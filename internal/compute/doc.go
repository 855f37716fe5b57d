// Package compute provides force-evaluation backends for the engine.
//
// The package automatically selects the best available backend:
//
//   - CUDA: GPU-accelerated force evaluation (when built with the cuda tag)
//   - CPU: fallback, parallel across cores for large systems
//
// Backends are deterministic: force output depends only on the input
// positions, never on worker scheduling, so continued runs reproduce the
// trajectory of an uninterrupted one exactly.
package compute
