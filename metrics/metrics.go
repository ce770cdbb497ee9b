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

// Package metrics serves the prometheus exposition endpoint during long
// ingestion or export runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gopkg.in/tomb.v2"
)

type Metrics struct {
	s   *Settings
	srv *http.Server
	t   tomb.Tomb
}

func NewMetrics(s *Settings) *Metrics {
	if s == nil {
		s = DefaultSettings()
	}

	mux := http.NewServeMux()
	mux.Handle(s.MetricsPath, promhttp.Handler())
	return &Metrics{
		s: s,
		srv: &http.Server{
			Addr:    s.MetricsAddr,
			Handler: mux,
		},
	}
}

func (m *Metrics) Start() {
	m.t.Go(func() error {
		log.Info("metrics: starting")
		err := m.srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("failed to serve metrics: %v", err)
			return err
		}
		return nil
	})
}

// Stop closes the listener so the serve goroutine exits, then waits for it.
func (m *Metrics) Stop() {
	log.Info("metrics: stopping")
	m.srv.Close()
	m.t.Kill(nil)
	if err := m.t.Wait(); err != nil {
		log.Errorf("metrics: %+v", err)
	}
	log.Info("metrics: stopped")
}
