package widget

import (
	"errors"
	"testing"
	"time"

	"github.com/rmrobinson/arrivals/services/arrivals"
	"github.com/stretchr/testify/assert"
)

type rowsFromRecordsTest struct {
	name    string
	records []arrivals.ArrivalRecord
	rows    []arrivalRow
}

var rowsFromRecordsTests = []rowsFromRecordsTest{
	{
		"records with times",
		[]arrivals.ArrivalRecord{
			arrivals.NewArrivalRecord("107", "ТК Центральный", []string{"3 мин", "11 мин"}),
			arrivals.NewArrivalRecord("220", "Профилакторий Радуга", []string{"8мин"}),
		},
		[]arrivalRow{
			{"107 ТК Центральный", "3 мин, 11 мин"},
			{"220 Профилакторий Радуга", "8мин"},
		},
	},
	{
		"record without times",
		[]arrivals.ArrivalRecord{
			arrivals.NewArrivalRecord("107", "ТК Центральный", nil),
		},
		[]arrivalRow{
			{"107 ТК Центральный", noTimesText},
		},
	},
	{
		"no records",
		nil,
		nil,
	},
}

func TestRowsFromRecords(t *testing.T) {
	for _, tt := range rowsFromRecordsTests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rows, rowsFromRecords(tt.records))
		})
	}
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "error: boom", statusText(nil, errors.New("boom")))
	assert.Equal(t, "", statusText(nil, nil))

	answer := &arrivals.Answer{
		Result: &arrivals.Result{Kind: arrivals.ResultSuccess, Attempts: 2},
		Text:   "107 – ТК Центральный: 3 мин",
	}
	assert.Equal(t, "success after 2 attempt(s)", statusText(answer, nil))

	answer = &arrivals.Answer{
		Result: &arrivals.Result{Kind: arrivals.ResultExhausted, Attempts: 10},
		Text:   "Не удалось получить информацию после 10 попыток.",
	}
	assert.Equal(t, "exhausted after 10 attempt(s)\nНе удалось получить информацию после 10 попыток.", statusText(answer, nil))
}

func TestClockText(t *testing.T) {
	now := time.Date(2020, time.April, 5, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, "Sun, 05 Apr 2020\n13:04:05 UTC", clockText(now))
}
