package stops

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// Row is a single line of a stops CSV file.
type Row struct {
	Name string `csv:"stop_name"`
	URL  string `csv:"stop_url"`
}

// Import loads every row of the CSV into the database, returning the number of stops written.
// The file must have a stop_name,stop_url header; rows are upserted so re-importing a file is safe.
func (db *DB) Import(ctx context.Context, r io.Reader) (int, error) {
	var rows []*Row
	if err := gocsv.UnmarshalCSV(stopsCSVReader(r), &rows); err != nil {
		return 0, fmt.Errorf("parsing stops csv: %w", err)
	}

	count := 0
	for idx, row := range rows {
		if err := db.PutStop(ctx, row.Name, row.URL); err != nil {
			return count, fmt.Errorf("importing row %d: %w", idx+1, err)
		}
		count++
	}
	return count, nil
}

// Extra columns are tolerated, and rows with fewer columns than the header are not rejected.
func stopsCSVReader(in io.Reader) gocsv.CSVReader {
	csvReader := csv.NewReader(in)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	return csvReader
}
