/*
Package observability provides instrumentation for the frame graph.

It turns domain.Hooks into Prometheus counters, exposes store statistics as
gauges, and combines several hook sets into one so that metrics and audit
logging can observe the same graph.
*/
package observability
