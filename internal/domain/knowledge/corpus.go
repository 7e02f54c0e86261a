package knowledge

const builtinVersion = "2026.2"

// builtinChunks is the shipped corpus. Content is paraphrased from published
// consensus statements; sources name the body of work, not a citation.
func builtinChunks() []Chunk {
	return []Chunk{
		{
			Source:   "Gabbett 2016, BJSM",
			Category: "workload",
			Tags:     []string{"load", "workload", "acwr", "recovery"},
			Content:  "Athletes whose acute:chronic load ratio exceeds 1.5 face a sharply elevated injury risk in the following week. Keep the load ratio within the 0.8-1.3 sweet spot and avoid rapid week-to-week spikes.",
		},
		{
			Source:   "IOC Consensus 2016",
			Category: "workload",
			Tags:     []string{"injury", "risk", "high-intensity", "intensity"},
			Content:  "High-intensity sessions should not be prescribed to athletes flagged at elevated risk; the load ratio and recent pain reports must be cleared before zone 4 or zone 5 work resumes.",
		},
		{
			Source:   "NSCA Position Statement",
			Category: "recovery",
			Tags:     []string{"sleep", "hrv", "fatigue", "readiness"},
			Content:  "Sleep quality below 6 of 10 on consecutive nights depresses heart-rate variability and readiness; schedule low-intensity or technical sessions until recovery markers normalize.",
		},
		{
			Source:   "Bahr & Krosshaug 2005",
			Category: "injury",
			Tags:     []string{"pain", "injury", "acute"},
			Content:  "Training through pain rated 4 or higher converts minor tissue overload into structural injury. Pain trending upward across sessions is a stop signal, not a caution.",
		},
		{
			Source:   "Mujika & Padilla 2003",
			Category: "periodization",
			Tags:     []string{"taper", "tapering", "competition", "peak"},
			Content:  "An effective taper reduces volume by 40-60% while maintaining intensity and frequency; fitness is retained while fatigue dissipates over 8-14 days.",
		},
		{
			Source:   "Issurin 2010",
			Category: "periodization",
			Tags:     []string{"plan", "phase", "periodization", "macrocycle", "pre_season", "pre-season"},
			Content:  "Block periodization concentrates compatible training targets; transitions between phases must step intensity gradually rather than jumping between extremes.",
		},
		{
			Source:   "Kellmann 2010",
			Category: "recovery",
			Tags:     []string{"rpe", "monitoring", "overtraining"},
			Content:  "Sustained session-RPE at 8 or above without planned recovery is the leading self-report predictor of non-functional overreaching.",
		},
		{
			Source:   "Saw et al. 2016",
			Category: "monitoring",
			Tags:     []string{"feedback", "wellness", "subjective"},
			Content:  "Subjective self-report measures respond to training load earlier and more consistently than objective markers; daily athlete feedback deserves primary weight in load decisions.",
		},
	}
}
