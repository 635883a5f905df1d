// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

package simulation

import (
	"sort"
	"time"

	"github.com/0xsoniclabs/aida-sett/logger"
	"github.com/0xsoniclabs/aida-sett/state/proxy"
	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/stat"
)

// Summary counts the actions of a run.
type Summary struct {
	Rounds    int
	Frequency map[string]int
	// Losses are the rounding losses of the round trips in order.
	Losses  []float64
	Elapsed time.Duration
}

func newSummary() Summary {
	return Summary{Frequency: make(map[string]int)}
}

func (s *Summary) add(action string) {
	s.Rounds++
	s.Frequency[action]++
}

func (s Summary) clone() Summary {
	out := Summary{Rounds: s.Rounds, Elapsed: s.Elapsed, Frequency: make(map[string]int, len(s.Frequency))}
	for k, v := range s.Frequency {
		out.Frequency[k] = v
	}
	out.Losses = append(out.Losses, s.Losses...)
	return out
}

// LossStats returns the mean and standard deviation of the round trip
// losses. The deviation is zero for fewer than two samples.
func (s Summary) LossStats() (mean, std float64) {
	switch len(s.Losses) {
	case 0:
		return 0, 0
	case 1:
		return s.Losses[0], 0
	}
	return stat.MeanStdDev(s.Losses, nil)
}

// counting is implemented by substrates that count their traffic.
type counting interface {
	Stats() proxy.Stats
}

func (m *Manager) logSummary() {
	s := m.summary
	hours, minutes, seconds := logger.ParseTime(s.Elapsed)
	m.log.Noticef("Simulation of %v: %d rounds in %d:%02d:%02d, seed %d", m.w.snap.Kind(), s.Rounds, hours, minutes, seconds, m.seed)
	actions := maps.Keys(s.Frequency)
	sort.Strings(actions)
	for _, a := range actions {
		m.log.Noticef("\t%-20v %d", a, s.Frequency[a])
	}
	if len(s.Losses) > 0 {
		mean, std := s.LossStats()
		m.log.Noticef("round trip loss over %d trips: mean %.2f, std %.2f", len(s.Losses), mean, std)
	}
	if c, ok := m.setup.Sub.(counting); ok {
		m.log.Noticef("substrate: %v", c.Stats())
	}
}
