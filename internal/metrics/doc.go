// Package metrics records lifecycle operation latency, failures, and bytes
// moved. The Prometheus observer registers on a caller-supplied registry; the
// CLI dumps that registry to a node_exporter textfile after each command.
package metrics
