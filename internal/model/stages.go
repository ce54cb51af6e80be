package model

// Stage names, in pipeline order. Each stage owns a sub-range of the overall
// progress percentage so a polling client sees one smooth progression.
const (
	StageUpload     = "upload"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageInsights   = "insights"
)

// StageRange is the slice of the overall 0–100 progress owned by one stage.
type StageRange struct {
	Lo float64
	Hi float64
}

var stageRanges = map[string]StageRange{
	StageUpload:     {0, 10},
	StageExtract:    {10, 40},
	StageTranscribe: {40, 85},
	StageInsights:   {85, 100},
}

// RangeFor returns the overall-progress window owned by the given stage.
// Unknown stages map to the full range.
func RangeFor(stage string) StageRange {
	if r, ok := stageRanges[stage]; ok {
		return r
	}
	return StageRange{0, 100}
}

// Overall maps a stage-local fraction in [0,1] into the stage's slice of the
// pipeline-wide percentage.
func (r StageRange) Overall(fraction float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return r.Lo + (r.Hi-r.Lo)*fraction
}
