package components

import (
	"strconv"

	"github.com/allbin/go-lever/internal/tui/colors"
	"github.com/allbin/go-lever/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnHandle    = "handle"
	columnPort      = "port"
	columnStatus    = "status"
	columnCommanded = "commanded"
	columnCanonical = "canonical"
	columnPot       = "pot"
	columnStrain    = "strain"
	columnPosition  = "position"
	columnPulls     = "pulls"

	positionBarWidth = 12
)

// LeverRow is the dashboard snapshot of one lever
type LeverRow struct {
	Handle      string
	Port        string
	Status      styles.LeverStatus
	Commanded   int
	Canonical   int
	HasForce    bool
	Pot         float64
	Strain      float64
	HasState    bool
	Position    float64
	HasPosition bool
	Pulls       int
}

// LeverTable renders one row per lever with the selected row highlighted
type LeverTable struct {
	table    table.Model
	selected int
	width    int
}

func NewLeverTable(width int) *LeverTable {
	columns := []table.Column{
		table.NewColumn(columnHandle, "Lever", 9),
		table.NewFlexColumn(columnPort, "Port", 2),
		table.NewColumn(columnStatus, "Status", 10),
		table.NewColumn(columnCommanded, "Commanded", 10),
		table.NewColumn(columnCanonical, "Confirmed", 10),
		table.NewColumn(columnPot, "Pot", 9),
		table.NewColumn(columnStrain, "Strain", 9),
		table.NewColumn(columnPosition, "Position", positionBarWidth+6),
		table.NewColumn(columnPulls, "Pulls", 6),
	}

	t := table.New(columns).
		BorderRounded().
		Focused(true).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Text)).
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Subtext1).BorderForeground(colors.Surface1)).
		HighlightStyle(lipgloss.NewStyle().Background(colors.Surface1).Foreground(colors.Text))

	lt := &LeverTable{table: t}
	lt.SetWidth(width)
	return lt
}

func (lt *LeverTable) SetWidth(width int) {
	if width < 80 {
		width = 80
	}
	lt.width = width
	lt.table = lt.table.WithTargetWidth(width)
}

// SetRows replaces the table contents and keeps the selection in range.
func (lt *LeverTable) SetRows(rows []LeverRow, selected int) {
	data := make([]table.Row, len(rows))
	for i, r := range rows {
		status := table.NewStyledCell(
			r.Status.Symbol()+" "+r.Status.String(),
			styles.GetStatusStyle(r.Status))

		data[i] = table.NewRow(table.RowData{
			columnHandle:    r.Handle,
			columnPort:      r.Port,
			columnStatus:    status,
			columnCommanded: FormatForce(r.Commanded, true),
			columnCanonical: FormatForce(r.Canonical, r.HasForce),
			columnPot:       FormatReading(r.Pot, r.HasState),
			columnStrain:    FormatReading(r.Strain, r.HasState),
			columnPosition:  FormatPosition(r.Position, r.HasPosition, positionBarWidth),
			columnPulls:     strconv.Itoa(r.Pulls),
		})
	}

	if selected >= len(rows) {
		selected = len(rows) - 1
	}
	if selected < 0 {
		selected = 0
	}
	lt.selected = selected
	lt.table = lt.table.WithRows(data).WithHighlightedRow(selected)
}

func (lt *LeverTable) Selected() int { return lt.selected }

func (lt *LeverTable) View() string {
	return lt.table.View()
}
