/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stats

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const metricPrefix = "ptzrig_"

// PrometheusExporter mirrors counters into Prometheus gauges
type PrometheusExporter struct {
	registry *prometheus.Registry
	stats    *Stats
	gauges   map[string]prometheus.Gauge
	interval time.Duration
}

// NewPrometheusExporter creates a new instance of PrometheusExporter
func NewPrometheusExporter(s *Stats, scrapeInterval time.Duration) *PrometheusExporter {
	return &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		stats:    s,
		gauges:   map[string]prometheus.Gauge{},
		interval: scrapeInterval,
	}
}

// Handler returns the /metrics handler
func (e *PrometheusExporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		e.registry,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	))
	return mux
}

// Start serves metrics on listenPort until ctx is done
func (e *PrometheusExporter) Start(ctx context.Context, listenPort int) error {
	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			e.scrapeMetrics()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	addr := fmt.Sprintf(":%d", listenPort)
	log.Infof("Starting prometheus exporter on %s", addr)
	return serve(ctx, addr, e.Handler())
}

func (e *PrometheusExporter) scrapeMetrics() {
	for mkey, mval := range e.stats.Get() {
		g, ok := e.gauges[mkey]
		if !ok {
			g = prometheus.NewGauge(prometheus.GaugeOpts{
				Name: metricPrefix + flattenKey(mkey),
				Help: mkey,
			})
			if err := e.registry.Register(g); err != nil {
				log.Errorf("failed to register metric %s %v", mkey, err)
				continue
			}
			e.gauges[mkey] = g
		}
		g.Set(float64(mval))
	}
}

func flattenKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, "=", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}
