package metrics

import "github.com/prometheus/client_golang/prometheus"

// WriteTextfile dumps the metrics to a file in the text exposition format,
// for pickup by a node exporter textfile collector.
//
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
