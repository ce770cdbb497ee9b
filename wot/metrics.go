/*
   wotmate - PGP web of trust grapher
   Copyright (C) 2015-2018  The Linux Foundation and contributors

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package wot

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var metrics = struct {
	searches       prometheus.Counter
	searchDuration prometheus.Histogram
	pathsFound     prometheus.Counter
	pathsCulled    prometheus.Counter
	exhausted      prometheus.Counter
}{
	searches: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "path_searches",
			Help:      "Count of path searches since startup",
		},
	),
	searchDuration: prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wotmate",
			Name:      "path_search_duration_seconds",
			Help:      "Time spent per path search",
		},
	),
	pathsFound: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "paths_found",
			Help:      "Count of certification paths discovered since startup",
		},
	),
	pathsCulled: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "paths_culled",
			Help:      "Count of redundant paths culled since startup",
		},
	),
	exhausted: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "path_searches_exhausted",
			Help:      "Count of path searches stopped at the iteration ceiling",
		},
	),
}

var metricsRegister sync.Once

func registerMetrics() {
	metricsRegister.Do(func() {
		prometheus.MustRegister(metrics.searches)
		prometheus.MustRegister(metrics.searchDuration)
		prometheus.MustRegister(metrics.pathsFound)
		prometheus.MustRegister(metrics.pathsCulled)
		prometheus.MustRegister(metrics.exhausted)
	})
}

func recordSearch() {
	registerMetrics()
	metrics.searches.Inc()
}

func recordPathsFound(n int, duration time.Duration) {
	registerMetrics()
	metrics.pathsFound.Add(float64(n))
	metrics.searchDuration.Observe(duration.Seconds())
}

func recordCulled() {
	registerMetrics()
	metrics.pathsCulled.Inc()
}

func recordExhausted() {
	registerMetrics()
	metrics.exhausted.Inc()
}
