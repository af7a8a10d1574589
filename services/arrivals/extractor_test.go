package arrivals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleBlockText = "107 – ТК Центральный: 3 мин, 11 мин220 – Профилакторий Радугакаждые: 8мин"

type extractAllTest struct {
	name   string
	text   string
	result []ArrivalRecord
}

var extractAllTests = []extractAllTest{
	{
		"entries run together",
		sampleBlockText,
		[]ArrivalRecord{
			NewArrivalRecord("107", "ТК Центральный", []string{"3 мин", "11 мин"}),
			NewArrivalRecord("220", "Профилакторий Радуга", []string{"8мин"}),
		},
	},
	{
		"entries separated by whitespace",
		"107 – ТК Центральный: 3 мин, 11 мин 220 – Профилакторий Радуга каждые: 8 мин",
		[]ArrivalRecord{
			NewArrivalRecord("107", "ТК Центральный", []string{"3 мин", "11 мин"}),
			NewArrivalRecord("220", "Профилакторий Радуга", []string{"8 мин"}),
		},
	},
	{
		"word separators",
		"5 до Вокзал: 4 мин12 to Airport: 7 min, 19 min",
		[]ArrivalRecord{
			NewArrivalRecord("5", "Вокзал", []string{"4 мин"}),
			NewArrivalRecord("12", "Airport", []string{"7 min", "19 min"}),
		},
	},
	{
		"name ends at a time label",
		"33 – Северный 6 мин, 14 мин",
		[]ArrivalRecord{
			NewArrivalRecord("33", "Северный", []string{"6 мин", "14 мин"}),
		},
	},
	{
		"name with a number that is not a time",
		"41 – Микрорайон 5: 2 мин",
		[]ArrivalRecord{
			NewArrivalRecord("41", "Микрорайон 5", []string{"2 мин"}),
		},
	},
	{
		"tomorrow ends the name and has no times",
		"107 – ТК Центральный завтра в 06:15220 – Радуга: 8 мин",
		[]ArrivalRecord{
			NewArrivalRecord("107", "ТК Центральный", nil),
			NewArrivalRecord("220", "Радуга", []string{"8 мин"}),
		},
	},
	{
		"duplicate route numbers are kept",
		"107 – А: 3 мин107 – Б: 9 мин",
		[]ArrivalRecord{
			NewArrivalRecord("107", "А", []string{"3 мин"}),
			NewArrivalRecord("107", "Б", []string{"9 мин"}),
		},
	},
	{
		"long digit runs are not route numbers",
		"1107 – Вокзал: 3 мин",
		nil,
	},
	{
		"route number glued to a clock time",
		"5 – А завтра в 6:40107 – Б: 3 мин",
		[]ArrivalRecord{
			NewArrivalRecord("5", "А", nil),
			NewArrivalRecord("107", "Б", []string{"3 мин"}),
		},
	},
	{
		"anchor without name or times is skipped",
		"107 –220 – Радуга: 8 мин",
		[]ArrivalRecord{
			NewArrivalRecord("220", "Радуга", []string{"8 мин"}),
		},
	},
	{
		"lone anchor",
		"107 –",
		nil,
	},
	{
		"non-breaking space inside a time label",
		"107 – Центр: 3\u00a0мин, 9\u2009min",
		[]ArrivalRecord{
			NewArrivalRecord("107", "Центр", []string{"3\u00a0мин", "9\u2009min"}),
		},
	},
	{
		"text without entries",
		"Нет данных о транспорте",
		nil,
	},
	{
		"empty text",
		"",
		nil,
	},
	{
		"whitespace only",
		"   \n\t ",
		nil,
	},
}

func TestExtractAll(t *testing.T) {
	for _, tt := range extractAllTests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractAll(tt.text)
			assert.Equal(t, tt.result, res)
		})
	}
}

func TestExtractAllIsRepeatable(t *testing.T) {
	assert.Equal(t, ExtractAll(sampleBlockText), ExtractAll(sampleBlockText))
}

type extractOneTest struct {
	name        string
	text        string
	routeNumber string
	found       bool
	result      ArrivalRecord
}

var extractOneTests = []extractOneTest{
	{
		"first route",
		sampleBlockText,
		"107",
		true,
		NewArrivalRecord("107", "ТК Центральный", []string{"3 мин", "11 мин"}),
	},
	{
		"second route",
		sampleBlockText,
		"220",
		true,
		NewArrivalRecord("220", "Профилакторий Радуга", []string{"8мин"}),
	},
	{
		"missing route",
		sampleBlockText,
		"999",
		false,
		ArrivalRecord{},
	},
	{
		"route without times is not an answer",
		"107 – ТК Центральный завтра в 06:15220 – Радуга: 8 мин",
		"107",
		false,
		ArrivalRecord{},
	},
	{
		"first duplicate wins",
		"107 – А: 3 мин107 – Б: 9 мин",
		"107",
		true,
		NewArrivalRecord("107", "А", []string{"3 мин"}),
	},
	{
		"duplicate without times is skipped",
		"107 – А завтра107 – Б: 9 мин",
		"107",
		true,
		NewArrivalRecord("107", "Б", []string{"9 мин"}),
	},
	{
		"bare single route layout",
		"107 ТК Центральный 3 мин 11 мин",
		"107",
		true,
		NewArrivalRecord("107", "ТК Центральный", []string{"3 мин", "11 мин"}),
	},
	{
		"bare layout stops at the next route",
		"107 ТК Центральный 3 мин 220 Радуга 8 мин",
		"220",
		true,
		NewArrivalRecord("220", "Радуга", []string{"8 мин"}),
	},
	{
		"bare layout ignores time labels matching the route",
		"5 мин 12 Вокзал 5 мин",
		"5",
		false,
		ArrivalRecord{},
	},
	{
		"longer route number does not match its tail",
		"1107 – Вокзал: 3 мин",
		"107",
		false,
		ArrivalRecord{},
	},
	{
		"route after a clock time",
		"107 – ТК Центральный завтра в 06:15220 – Радуга: 8 мин",
		"220",
		true,
		NewArrivalRecord("220", "Радуга", []string{"8 мин"}),
	},
	{
		"empty text",
		"",
		"107",
		false,
		ArrivalRecord{},
	},
	{
		"empty route number",
		sampleBlockText,
		" ",
		false,
		ArrivalRecord{},
	},
}

func TestExtractOne(t *testing.T) {
	for _, tt := range extractOneTests {
		t.Run(tt.name, func(t *testing.T) {
			res, found := ExtractOne(tt.text, tt.routeNumber)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.result, res)
		})
	}
}

func TestArrivalRecordIsAValue(t *testing.T) {
	times := []string{"3 мин"}
	record := NewArrivalRecord("107", "ТК Центральный", times)

	times[0] = "changed"
	record.ArrivalTimes()[0] = "changed"

	assert.Equal(t, []string{"3 мин"}, record.ArrivalTimes())
}
