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

// Package report renders the history of a vault as an interactive chart.
package report

import (
	"io"

	"github.com/0xsoniclabs/aida-sett/snapshot"
	"github.com/cockroachdb/errors"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/holiman/uint256"
)

// unit scales 18 decimal fixed point values to whole tokens.
const unit = 1e18

// Series is a named sequence of (block, value) points.
type Series struct {
	Name   string
	Points [][2]float64
}

// Collect extracts the vault level series from snapshots ordered by block.
// Snapshots without a price per share contribute no price point.
func Collect(snaps []*snapshot.Snap) []Series {
	ppfs := Series{Name: "Price Per Share"}
	supply := Series{Name: "Total Supply"}
	pool := Series{Name: "Strategy Pool"}
	reserve := Series{Name: "Vault Reserve"}
	for _, s := range snaps {
		x := float64(s.Block())
		if p, err := s.PricePerShare(); err == nil {
			ppfs.Points = append(ppfs.Points, point(x, p))
		}
		st := s.Sett()
		if st.TotalSupply != nil {
			supply.Points = append(supply.Points, point(x, st.TotalSupply))
		}
		strategy := s.Strategy()
		// the vault balance includes what the strategy holds
		if st.Balance != nil && strategy.BalanceOf != nil && !st.Balance.Lt(strategy.BalanceOf) {
			reserve.Points = append(reserve.Points, point(x, new(uint256.Int).Sub(st.Balance, strategy.BalanceOf)))
		}
		if strategy.BalanceOfPool != nil {
			pool.Points = append(pool.Points, point(x, strategy.BalanceOfPool))
		}
	}
	return []Series{ppfs, supply, pool, reserve}
}

func point(x float64, v *uint256.Int) [2]float64 {
	return [2]float64{x, v.Float64() / unit}
}

// convertData converts series points to chart points.
func convertData(data [][2]float64) []opts.LineData {
	items := []opts.LineData{}
	for _, pair := range data {
		items = append(items, opts.LineData{Value: pair})
	}
	return items
}

// newChart creates a line chart plotting every series over the block height.
func newChart(title string, series []Series) *charts.Line {
	chart := charts.NewLine()
	chart.SetGlobalOptions(charts.WithInitializationOpts(opts.Initialization{
		Theme: types.ThemeChalk,
	}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: true,
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show:  true,
					Title: "Save",
				},
				DataZoom: &opts.ToolBoxFeatureDataZoom{
					Show: true,
				},
			},
		}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "block", Type: "value"}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}))
	for _, s := range series {
		chart.AddSeries(s.Name, convertData(s.Points))
	}
	return chart
}

// Render writes an HTML page charting the given snapshots.
func Render(w io.Writer, title string, snaps []*snapshot.Snap) error {
	if len(snaps) == 0 {
		return errors.New("no snapshots to render")
	}
	return errors.Wrap(newChart(title, Collect(snaps)).Render(w), "failed to render chart")
}
