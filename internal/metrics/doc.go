// Package metrics exports pcmpipe statistics to prometheus.
package metrics
