// Package server exposes a local repository over HTTP so that other
// machines can use it as a Maven remote.
//
// Routes:
//
//	GET  /healthz   liveness probe
//	GET  /metrics   Prometheus metrics, when a registry is configured
//	GET  /*         repository file (HEAD supported)
//	PUT  /*         store a file atomically
//
// Uploads can be guarded by HTTP basic auth, by SSH signatures in the
// X-Signature headers produced by a KeyAuth deployment, or both. Reads are
// public unless Options.ProtectReads is set.
package server
