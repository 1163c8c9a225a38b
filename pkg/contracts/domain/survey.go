package domain

// ColumnKind classifies a survey column for downstream views.
type ColumnKind string

const (
	KindCategorical ColumnKind = "categorical"
	KindNumeric     ColumnKind = "numeric"
)

// ColumnInfo describes one cleaned survey column.
type ColumnInfo struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique"`
}

// CleanReport summarizes what the cleaning stage did to the raw table.
type CleanReport struct {
	RawColumns     int      `json:"raw_columns"`
	RawRows        int      `json:"raw_rows"`
	DroppedColumns []string `json:"dropped_columns"`
	RenamedColumns int      `json:"renamed_columns"`
	FilledCells    int      `json:"filled_cells"`
	Warnings       []string `json:"warnings,omitempty"`
}

// ValueCount is one bar in a categorical breakdown.
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent,omitempty"`
}

// ChartConfig is a render-ready chart payload for the dashboard frontend.
type ChartConfig struct {
	ChartType string       `json:"chartType"`
	Title     string       `json:"title"`
	XAxis     string       `json:"xAxis,omitempty"`
	YAxis     string       `json:"yAxis,omitempty"`
	Points    []ValueCount `json:"points"`
	Total     int          `json:"total"`
}

// ColumnStats holds the descriptive statistics for one numeric column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// HistogramBin is one bucket of a numeric histogram.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of one numeric column.
type Histogram struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
}

// RegionCount is the respondent tally for one census region, joined with
// its representative map coordinate.
type RegionCount struct {
	Region string  `json:"region"`
	Count  int     `json:"count"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// GuideSection is one block of the static user guide.
type GuideSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
