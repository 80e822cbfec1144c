// Package devtools serves a local inspector for running stores.
//
// Routes:
//
//	GET /healthz                liveness
//	GET /stores                 registered stores and their fields
//	GET /stores/{name}          current state as JSON
//	GET /stores/{name}/watch    WebSocket stream of snapshot and change messages
//	GET /scale?size=&factor=    scaling results for the process geometry
//	GET /metrics                Prometheus metrics
//
// The inspector exposes full state and accepts any origin. Bind it to a
// loopback address.
package devtools
