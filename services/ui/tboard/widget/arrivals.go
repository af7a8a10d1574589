package widget

import (
	"strings"

	"github.com/rivo/tview"
	"github.com/rmrobinson/arrivals/services/arrivals"
)

const (
	arrivalTimeWidth = 16
	noTimesText      = "—"
)

type arrivalRow struct {
	route string
	times string
}

// rowsFromRecords lays out one row per record, keeping the source order.
func rowsFromRecords(records []arrivals.ArrivalRecord) []arrivalRow {
	var rows []arrivalRow
	for _, record := range records {
		row := arrivalRow{
			route: record.RouteNumber() + " " + record.RouteName(),
			times: noTimesText,
		}
		if record.HasTimes() {
			row.times = strings.Join(record.ArrivalTimes(), ", ")
		}
		rows = append(rows, row)
	}
	return rows
}

type arrivalRecord struct {
	*tview.Flex

	routeText       *tview.TextView
	arrivalTimeText *tview.TextView
}

func newArrivalRecord() *arrivalRecord {
	ar := &arrivalRecord{
		Flex:            tview.NewFlex(),
		routeText:       tview.NewTextView(),
		arrivalTimeText: tview.NewTextView(),
	}

	ar.routeText.SetTextAlign(tview.AlignLeft)
	ar.arrivalTimeText.SetTextAlign(tview.AlignRight)

	ar.SetDirection(tview.FlexColumn).
		AddItem(ar.routeText, 0, 1, false).
		AddItem(ar.arrivalTimeText, arrivalTimeWidth, 1, false)

	return ar
}

// Arrivals is a widget that displays the upcoming arrivals at a stop.
type Arrivals struct {
	*tview.Flex

	app *tview.Application

	records []*arrivalRecord
}

// NewArrivals creates a new arrivals widget with the specified number of rows.
// It will not show any data until Refresh() is called to display the data.
func NewArrivals(app *tview.Application, stop string, rowCount int) *Arrivals {
	a := &Arrivals{
		Flex: tview.NewFlex(),
		app:  app,
	}

	a.SetBorder(true).
		SetTitle(stop).
		SetTitleAlign(tview.AlignLeft)

	a.SetDirection(tview.FlexRow)
	for i := 0; i < rowCount; i++ {
		a.records = append(a.records, newArrivalRecord())
		a.AddItem(a.records[i], 1, 1, false)
	}

	return a
}

// Refresh causes the arrival data to be updated. Records beyond the row count are not shown.
func (a *Arrivals) Refresh(records []arrivals.ArrivalRecord) {
	rows := rowsFromRecords(records)

	a.app.QueueUpdateDraw(func() {
		for i := 0; i < len(a.records); i++ {
			if i >= len(rows) {
				a.records[i].routeText.Clear()
				a.records[i].arrivalTimeText.Clear()
				continue
			}

			a.records[i].routeText.SetText(rows[i].route)
			a.records[i].arrivalTimeText.SetText(rows[i].times)
		}
	})
}
