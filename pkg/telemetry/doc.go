// Package telemetry provides store observers that export commits as
// Prometheus metrics and OpenTelemetry spans.
//
//	reg := prometheus.NewRegistry()
//	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	tracer := telemetry.NewTracer()
//
//	s, set := store.New("global", GlobalState{},
//	    store.WithObserver(metrics),
//	    store.WithObserver(tracer),
//	)
package telemetry
