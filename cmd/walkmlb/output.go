package main

import (
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/syncer"
)

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderCacheSummary(w io.Writer, sum []cache.KindSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Rows", "Latest Update", "Payload Bytes"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	var rows, size int64
	for _, s := range sum {
		latest := "-"
		if s.LatestUpdate != nil {
			latest = s.LatestUpdate.UTC().Format(time.RFC3339)
		}
		t.AppendRow(table.Row{string(s.Kind), s.Count, latest, s.PayloadBytes})
		rows += s.Count
		size += s.PayloadBytes
	}
	t.AppendFooter(table.Row{"Total", rows, "", size})
	t.Render()
}

func renderRunStatus(w io.Writer, st *syncer.RunStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	ts := func(p *time.Time) string {
		if p == nil {
			return "-"
		}
		return p.UTC().Format(time.RFC3339)
	}
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	t.AppendRows([]table.Row{
		{"Running", strconv.FormatBool(st.IsRunning)},
		{"Last run", orDash(st.LastRunID)},
		{"Kind", orDash(st.LastRunKind)},
		{"Started", ts(st.LastStart)},
		{"Finished", ts(st.LastFinish)},
		{"Updated games", st.LastUpdated},
		{"Evicted rows", st.LastEvicted},
		{"Next interval", orDash(st.NextInterval)},
		{"Cycles", st.Cycles},
		{"Last error", orDash(st.LastError)},
		{"Last cycle error", orDash(st.CycleError)},
		{"Last admin error", orDash(st.AdminError)},
	})
	t.Render()
}
