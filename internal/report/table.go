// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Align is the horizontal alignment of a table column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Stat is one labelled count of a summary table.
type Stat struct {
	Label string
	Value int
}

// Table renders rows under headers with rounded borders. Short rows are
// padded with empty cells.
func Table(headers []string, rows [][]string, aligns []Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    60,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// SummaryTable renders labelled counts.
func SummaryTable(stats []Stat) string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{s.Label, strconv.Itoa(s.Value)})
	}
	return Table([]string{"Metric", "Count"}, rows, []Align{AlignLeft, AlignRight})
}

// RowsTable renders up to limit report rows; a limit of zero or less
// renders all of them.
func RowsTable(rows []types.ReportRow, limit int) string {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			r.Name, r.Title, r.Year, r.Venue,
			flag(r.NameMatch), flag(r.AffiliationMatch), string(r.Status),
		})
	}
	return Table([]string{"Name", "Title", "Year", "Venue", "Name Match", "Affiliation Match", "Status"}, cells, nil)
}

// RecordsTable renders classified publications of one profile.
func RecordsTable(records []types.PublicationRecord) string {
	cells := make([][]string, 0, len(records))
	for _, r := range records {
		cells = append(cells, []string{
			r.Title, r.Year.String(), r.Venue,
			flag(r.NameMatch), flag(r.AffiliationMatch), flag(r.SDGRelated), string(r.Status()),
		})
	}
	return Table([]string{"Title", "Year", "Venue", "Name Match", "Affiliation Match", "SDG", "Status"}, cells, nil)
}
