// Package metrics collects crane usage metrics with prometheus.
//
// All recording methods are safe to call on a nil *Metrics, so collection stays optional
// for library users.
package metrics
