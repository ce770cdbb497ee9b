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

package ingest

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var metrics = struct {
	keysLoaded     prometheus.Counter
	uidsLoaded     prometheus.Counter
	sigsLoaded     prometheus.Counter
	recordsSkipped prometheus.Counter
	weakKeys       prometheus.Counter
}{
	keysLoaded: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "ingest_keys_loaded",
			Help:      "Count of public keys accepted since startup",
		},
	),
	uidsLoaded: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "ingest_uids_loaded",
			Help:      "Count of identities accepted since startup",
		},
	),
	sigsLoaded: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "ingest_sigs_loaded",
			Help:      "Count of certifications stored since startup",
		},
	),
	recordsSkipped: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "ingest_records_skipped",
			Help:      "Count of malformed listing records skipped since startup",
		},
	),
	weakKeys: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wotmate",
			Name:      "ingest_weak_keys_rejected",
			Help:      "Count of keys rejected for insufficient strength since startup",
		},
	),
}

var metricsRegister sync.Once

func registerMetrics() {
	metricsRegister.Do(func() {
		prometheus.MustRegister(metrics.keysLoaded)
		prometheus.MustRegister(metrics.uidsLoaded)
		prometheus.MustRegister(metrics.sigsLoaded)
		prometheus.MustRegister(metrics.recordsSkipped)
		prometheus.MustRegister(metrics.weakKeys)
	})
}

func recordKeyLoaded() {
	registerMetrics()
	metrics.keysLoaded.Inc()
}

func recordUIDLoaded() {
	registerMetrics()
	metrics.uidsLoaded.Inc()
}

func recordSigsLoaded(n int) {
	registerMetrics()
	metrics.sigsLoaded.Add(float64(n))
}

func recordSkipped() {
	registerMetrics()
	metrics.recordsSkipped.Inc()
}

func recordWeakKey() {
	registerMetrics()
	metrics.weakKeys.Inc()
}
