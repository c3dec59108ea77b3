package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/table"
)

func writeTCX(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
<Activities><Activity Sport="Biking"><Lap StartTime="2023-04-01T09:00:00Z"><Track>
`)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, `<Trackpoint><Time>2023-04-01T09:00:%02d.000Z</Time>
<Position><LatitudeDegrees>%.3f</LatitudeDegrees><LongitudeDegrees>2.350</LongitudeDegrees></Position>
<AltitudeMeters>%d</AltitudeMeters><DistanceMeters>%d</DistanceMeters>
<HeartRateBpm><Value>%d</Value></HeartRateBpm></Trackpoint>
`, i*5, 48.850+float64(i)/1000, 35+i, i*40, 110+i)
	}
	b.WriteString(`</Track></Lap></Activity></Activities></TrainingCenterDatabase>`)

	path := filepath.Join(dir, "ride.tcx")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunWritesTable(t *testing.T) {
	dir := t.TempDir()
	in := writeTCX(t, dir)
	out := filepath.Join(dir, "ride.csv")

	require.NoError(t, run(in, out, "", 13))

	rows, err := table.ReadSamplesFile(out)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ride.tcx", rows[0].FileName)
	assert.Equal(t, 32415.0, rows[3].TimeInSeconds)
	assert.Equal(t, 113.0, rows[3].HeartRate)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunWritesPlots(t *testing.T) {
	dir := t.TempDir()
	in := writeTCX(t, dir)
	plots := filepath.Join(dir, "plots")

	require.NoError(t, run(in, filepath.Join(dir, "ride.csv"), plots, 15))

	for _, name := range []string{"heart_rate.png", "altitude.png", "route.png"} {
		data, err := os.ReadFile(filepath.Join(plots, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), name)
	}
}

func TestRunMalformed(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.tcx")
	require.NoError(t, os.WriteFile(in, []byte("<TrainingCenterDatabase/>"), 0o644))

	err := run(in, filepath.Join(dir, "bad.csv"), "", 13)
	var malformed *models.MalformedTrackError
	assert.ErrorAs(t, err, &malformed)
	assert.NoFileExists(t, filepath.Join(dir, "bad.csv"))
}
