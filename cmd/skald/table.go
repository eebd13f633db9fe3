package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// columnAlignment controls per-column alignment in queue views. Numeric
// columns (document IDs, counts) render right-aligned, text left-aligned.
type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func (a columnAlignment) cellAlign() text.Align {
	if a == alignRight {
		return text.AlignRight
	}
	return text.AlignLeft
}

func toRow(width int, cells []string) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// renderTable renders the queue list and health views. All skald tables go
// through here so every command prints the same rounded style. Missing cells
// render empty; alignments beyond the given slice default to left.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	width := len(headers)
	if width == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(width, headers))
	for _, row := range rows {
		tw.AppendRow(toRow(width, row))
	}

	configs := make([]table.ColumnConfig, width)
	for i := range configs {
		align := alignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align.cellAlign(),
			AlignHeader: text.AlignLeft,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
