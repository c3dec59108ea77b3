// Command segment cuts one labelled segment out of a track file without the
// HTTP server:
//
//	segment -in run.tcx -label lap1 12 40
//
// The two rows are the clicks of an interactive selection, in either order.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/noznum/tracklab/internal/config"
	"github.com/noznum/tracklab/internal/database"
	"github.com/noznum/tracklab/internal/repository"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/internal/storage"
)

func main() {
	cfg := config.Load()

	in := flag.String("in", "", "TCX or CSV track file")
	label := flag.String("label", "", "segment label, also the output file name")
	outDir := flag.String("out", cfg.OutputDir, "output directory for segment tables and stats.csv")
	dbPath := flag.String("db", cfg.DBPath, "segment catalog path, empty to disable")
	flag.Parse()

	if *in == "" || *label == "" || flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s -in FILE -label NAME ROW ROW\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	rows := make([]int, 2)
	for i, arg := range flag.Args() {
		row, err := strconv.Atoi(arg)
		if err != nil {
			log.Fatalf("segment: invalid row %q", arg)
		}
		rows[i] = row
	}

	store, err := storage.New(*outDir)
	if err != nil {
		log.Fatalf("segment: %v", err)
	}

	var catalog service.Catalog
	if *dbPath != "" {
		conn, err := database.Open(database.Config{Path: *dbPath})
		if err != nil {
			log.Fatalf("segment: %v", err)
		}
		defer conn.Close()
		catalog = repository.NewSegmentRepository(conn)
	}

	result, err := run(service.NewTrackService(store, catalog, cfg.MapZoom), *in, *label, rows[0], rows[1])
	if err != nil {
		log.Fatalf("segment: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("segment: %v", err)
	}
}

func run(svc *service.TrackService, in, label string, a, b int) (service.SaveResult, error) {
	if _, err := svc.Load(in); err != nil {
		return service.SaveResult{}, err
	}
	if _, err := svc.BeginSelection(); err != nil {
		return service.SaveResult{}, err
	}
	if _, err := svc.ConfirmLabel(label); err != nil {
		return service.SaveResult{}, err
	}
	for _, row := range []int{a, b} {
		if _, err := svc.Click(row); err != nil {
			return service.SaveResult{}, err
		}
	}
	return svc.SaveSelection()
}
