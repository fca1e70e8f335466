package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type tableColumn struct {
	header     string
	alignRight bool
}

// tableView is a titled grid rendered with the rounded style. Rows shorter
// than the column list are padded with blanks.
type tableView struct {
	title   string
	columns []tableColumn
	rows    [][]string
	caption string
}

func (v tableView) render() string {
	if len(v.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	if v.title != "" {
		tw.SetTitle(v.title)
	}

	header := make(table.Row, len(v.columns))
	configs := make([]table.ColumnConfig, len(v.columns))
	for i, col := range v.columns {
		header[i] = col.header
		align := text.AlignLeft
		if col.alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range v.rows {
		r := make(table.Row, len(v.columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	// A caption sits under the grid and leaves column widths alone.
	if v.caption != "" {
		tw.SetCaption(v.caption)
	}

	return tw.Render()
}
