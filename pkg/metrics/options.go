package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option defines some options to the metrics initialization
type Option func(*settings)

type settings struct {
	namespace   string
	constLabels prometheus.Labels
}

func defaultSettings() *settings {
	return &settings{
		namespace: DefaultNamespace,
	}
}

// WithNamespace prefixes every metric name. The default is "crane".
func WithNamespace(namespace string) Option {
	return func(s *settings) {
		s.namespace = namespace
	}
}

// WithConstLabels adds labels to every metric, e.g. to tell runs apart in a textfile collector
func WithConstLabels(labels map[string]string) Option {
	return func(s *settings) {
		s.constLabels = labels
	}
}
