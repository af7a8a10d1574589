package stops

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db := &DB{}
	require.NoError(t, db.Open(filepath.Join(t.TempDir(), "stops.db")))
	t.Cleanup(db.Close)
	return db
}

func TestDBNotSetup(t *testing.T) {
	db := &DB{}
	ctx := context.Background()

	_, err := db.StopNames(ctx)
	assert.Equal(t, ErrDatabaseNotSetup, err)
	_, _, err = db.LookupStop(ctx, "Вокзал")
	assert.Equal(t, ErrDatabaseNotSetup, err)
	assert.Equal(t, ErrDatabaseNotSetup, db.PutStop(ctx, "Вокзал", "https://example.com"))
	assert.Equal(t, ErrDatabaseNotSetup, db.DeleteStop(ctx, "Вокзал"))
}

func TestDBPutLookup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.PutStop(ctx, " Вокзал ", "https://example.com/vokzal"))

	url, found, err := db.LookupStop(ctx, "Вокзал")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/vokzal", url)

	_, found, err = db.LookupStop(ctx, "Порт")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestDBPutReplaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.PutStop(ctx, "Вокзал", "https://example.com/old"))
	require.NoError(t, db.PutStop(ctx, "Вокзал", "https://example.com/new"))

	url, found, err := db.LookupStop(ctx, "Вокзал")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/new", url)

	names, err := db.StopNames(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Вокзал"}, names)
}

type putStopTest struct {
	name    string
	stop    string
	url     string
	wantErr error
}

var invalidPutStopTests = []putStopTest{
	{"missing name", "", "https://example.com", ErrInvalidStop},
	{"blank name", "   ", "https://example.com", ErrInvalidStop},
	{"missing url", "Вокзал", "", ErrInvalidStop},
}

func TestDBPutInvalid(t *testing.T) {
	db := openTestDB(t)

	for _, tt := range invalidPutStopTests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, db.PutStop(context.Background(), tt.stop, tt.url))
		})
	}
}

func TestDBStopNamesSorted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	names, err := db.StopNames(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"Порт", "Вокзал", "Аэропорт"} {
		require.NoError(t, db.PutStop(ctx, name, "https://example.com/"+name))
	}

	names, err = db.StopNames(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Аэропорт", "Вокзал", "Порт"}, names)
}

func TestDBDeleteStop(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.PutStop(ctx, "Вокзал", "https://example.com/vokzal"))
	require.NoError(t, db.DeleteStop(ctx, "Вокзал"))
	assert.NoError(t, db.DeleteStop(ctx, "Вокзал"))

	_, found, err := db.LookupStop(ctx, "Вокзал")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stops.db")
	ctx := context.Background()

	db := &DB{}
	require.NoError(t, db.Open(path))
	require.NoError(t, db.PutStop(ctx, "Вокзал", "https://example.com/vokzal"))
	db.Close()

	db = &DB{}
	require.NoError(t, db.Open(path))
	defer db.Close()

	url, found, err := db.LookupStop(ctx, "Вокзал")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/vokzal", url)
}

const stopsCSV = `stop_name,stop_url,comment
Вокзал,https://example.com/vokzal,main station
 Порт, https://example.com/port
Вокзал,https://example.com/vokzal2,moved
`

func TestImport(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	count, err := db.Import(ctx, strings.NewReader(stopsCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	names, err := db.StopNames(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Вокзал", "Порт"}, names)

	url, found, err := db.LookupStop(ctx, "Вокзал")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/vokzal2", url)

	url, found, err = db.LookupStop(ctx, "Порт")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/port", url)
}

func TestImportInvalidRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	count, err := db.Import(ctx, strings.NewReader("stop_name,stop_url\nВокзал,https://example.com/vokzal\nПорт,\n"))
	assert.Equal(t, 1, count)
	assert.True(t, errors.Is(err, ErrInvalidStop))
	assert.Contains(t, err.Error(), "row 2")
}
