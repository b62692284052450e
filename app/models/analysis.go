package models

import "encoding/json"

// AnalysisTile is one label/value stat card in the analysis grid.
type AnalysisTile struct {
	Label string `json:"label"`
	Val   string `json:"val"`
}

// Analysis is the contract the LLM must satisfy for an initial analysis:
// exactly four tiles, a short expert take, a pick, a confidence integer
// in [55,92] and an edge description. Anything else is a parse failure.
type Analysis struct {
	Tiles          []AnalysisTile `json:"tiles"`
	ExpertTake     string         `json:"expertTake"`
	Recommendation string         `json:"recommendation"`
	Confidence     int            `json:"confidence"`
	Edge           string         `json:"edge"`
}

// CachedAnalysis is one analysis_cache row, keyed by (game id, UTC date).
type CachedAnalysis struct {
	GameID   string
	Date     string
	Sport    string
	Analysis Analysis
}

// AnalyzeRequest is the inbound body of POST /api/analyze.
type AnalyzeRequest struct {
	Game       *Game           `json:"game"`
	OddsData   json.RawMessage `json:"oddsData"`
	InjuryData []Injury        `json:"injuryData"`
	UserQuery  string          `json:"userQuery"`
	Mode       string          `json:"mode"`
	GameID     string          `json:"gameId"`
}

// AnalysisResult is the orchestrator's success value: the parsed payload
// for initial mode, or raw text for chat mode.
type AnalysisResult struct {
	Analysis *Analysis
	Text     string
}
