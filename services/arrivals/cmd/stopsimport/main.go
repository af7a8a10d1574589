package main

import (
	"context"
	"flag"
	"os"

	"github.com/rmrobinson/arrivals/services/arrivals/stops"
	"go.uber.org/zap"
)

func main() {
	var (
		csvPath = flag.String("csv", "stops.csv", "The CSV file of stop_name,stop_url rows to import")
		dbPath  = flag.String("db", "stops.db", "The path to the stops database")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("error opening csv",
			zap.String("csv_path", *csvPath),
			zap.Error(err),
		)
	}
	defer f.Close()

	db := &stops.DB{}
	if err := db.Open(*dbPath); err != nil {
		logger.Fatal("error opening stops db",
			zap.String("stops_db", *dbPath),
			zap.Error(err),
		)
	}
	defer db.Close()

	count, err := db.Import(context.Background(), f)
	if err != nil {
		logger.Fatal("error importing stops",
			zap.String("csv_path", *csvPath),
			zap.Int("imported", count),
			zap.Error(err),
		)
	}

	logger.Info("imported stops",
		zap.String("csv_path", *csvPath),
		zap.String("stops_db", *dbPath),
		zap.Int("count", count),
	)
}
