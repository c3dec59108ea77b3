package models

// Summary holds the aggregate statistics of one sample sequence
type Summary struct {
	AvgHeartRate Float `json:"avg_heart_rate"`
	StdHeartRate Float `json:"std_heart_rate"` // Sample standard deviation
	AvgAltitude  Float `json:"avg_altitude"`
	StdAltitude  Float `json:"std_altitude"`

	Distance        float64 `json:"distance"`         // Max cumulative distance within the sequence
	Duration        string  `json:"duration"`         // HH:MM:SS of max elapsed - min elapsed
	DurationSeconds float64 `json:"duration_seconds"` // Same span in seconds

	AvgSpeed Float `json:"avg_speed"` // Distance / duration, meters per second
	StdSpeed Float `json:"std_speed"` // NaN when the sequence has no derived speed column
}

// StatsRecord is one row of the statistics log: a segment's statistics and
// its parent track's statistics side by side
type StatsRecord struct {
	FileName string `json:"file_name"`
	DirName  string `json:"dir_name"`
	Label    string `json:"label"`

	Segment Summary `json:"segment"`
	Global  Summary `json:"global"`
}

// StatsColumns is the header of the statistics log
var StatsColumns = []string{
	"file_name", "dir_name", "label",
	"avg_heart_rate", "std_heart_rate", "avg_altitude", "std_altitude",
	"distance", "duration", "avg_speed", "std_speed",
	"global_avg_heart_rate", "global_std_heart_rate", "global_avg_altitude", "global_std_altitude",
	"global_distance", "global_duration", "global_avg_speed", "global_std_speed",
}
