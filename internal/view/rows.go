package view

import (
	"fmt"
	"strings"

	"logmux/internal/filter"
	"logmux/internal/model"
)

const TimeLayout = "2006-01-02 15:04:05"

// Row is one visible line handed to the renderer. Metadata columns are
// empty when hidden by the filter state.
type Row struct {
	Entry  model.LogEntry
	Line   string
	Time   string
	Source string
}

// Prefix joins the visible metadata columns in the order lines, time, source.
func (r Row) Prefix() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Line, r.Time, r.Source} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Rows projects the viewport window over the filtered index into rows.
// entries must be the snapshot the index was last synced with.
func Rows(entries []model.LogEntry, ix *filter.Index, vp *Viewport, st filter.State) []Row {
	start, end := vp.Window()
	if end > ix.Count() {
		end = ix.Count()
	}
	if start >= end {
		return nil
	}
	rows := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		e := entries[ix.At(i)]
		r := Row{Entry: e}
		if st.Lines {
			r.Line = fmt.Sprintf("[%6d]", e.Seq)
		}
		if st.Time {
			r.Time = "[" + e.Time.Format(TimeLayout) + "]"
		}
		if st.Source {
			r.Source = "[" + strings.ToUpper(e.SourceName+":"+string(e.Stream)) + "]"
		}
		rows = append(rows, r)
	}
	return rows
}
