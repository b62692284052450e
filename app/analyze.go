package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/klove-dev/fadeodds/app/models"
)

// Request modes accepted by the analyze endpoint.
const (
	ModeInitial = "initial"
	ModeChat    = "chat"
)

// Machine-readable 403 codes so the client can branch to an upgrade flow.
const (
	CodeTierLocked   = "TIER_LOCKED"
	CodeLimitReached = "LIMIT_REACHED"
)

// Output budget per mode. Initial analyses get double the chat budget.
const (
	initialMaxTokens = 1024
	chatMaxTokens    = 512
)

// RequestError is the orchestrator's typed failure: every gateway or
// policy failure is converted to one of these at the boundary.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(msg string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: msg}
}

func forbidden(code, msg string) *RequestError {
	return &RequestError{Status: http.StatusForbidden, Code: code, Message: msg}
}

func upstreamError(msg string) *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Message: msg}
}

// Identity is the resolved caller: user id plus current subscription tier.
type Identity struct {
	UserID string
	Tier   models.Tier
}

// Analyzer decides, per request, whether to serve a cached analysis,
// charge quota, call the LLM, and persist results. Collaborators are
// injected so tests can run arbitrary tier/limit combinations.
type Analyzer struct {
	Limits map[models.Tier]models.TierLimits
	Usage  UsageStore
	Cache  AnalysisStore
	LLM    LLMClient
	Now    func() time.Time
}

// NewAnalyzer wires an Analyzer with the shipped tier table and
// Postgres-backed stores.
func NewAnalyzer(llm LLMClient) *Analyzer {
	return &Analyzer{
		Limits: models.DefaultTierLimits,
		Usage:  dbUsageStore{},
		Cache:  dbAnalysisStore{},
		LLM:    llm,
		Now:    time.Now,
	}
}

// Analyze handles one analysis request. Quota increments and cache writes
// happen only after a successful response is ready, so a failed analysis
// never consumes a user's daily allowance.
func (a *Analyzer) Analyze(ctx context.Context, identity Identity, req models.AnalyzeRequest) (*models.AnalysisResult, *RequestError) {
	if req.Game == nil {
		return nil, badRequest("Missing game data")
	}
	if req.Mode == ModeChat && strings.TrimSpace(req.UserQuery) == "" {
		return nil, badRequest("Missing user query")
	}

	limits := limitsForTier(a.Limits, identity.Tier)
	today := dayKeyUTC(a.Now())

	if req.Mode == ModeChat {
		return a.analyzeChat(ctx, identity, req, limits, today)
	}
	return a.analyzeInitial(ctx, identity, req, limits, today)
}

func (a *Analyzer) analyzeInitial(ctx context.Context, identity Identity, req models.AnalyzeRequest, limits models.TierLimits, today string) (*models.AnalysisResult, *RequestError) {
	if limits.Analyses == 0 {
		return nil, forbidden(CodeTierLocked, "AI analysis is not included in your plan")
	}

	usage, err := a.Usage.GetUsage(ctx, identity.UserID, today)
	if err != nil {
		return nil, upstreamError("Failed to read usage: " + err.Error())
	}
	if quotaExceeded(usage.Analyses, limits.Analyses) {
		return nil, forbidden(CodeLimitReached, "Daily analysis limit reached")
	}

	// Cache hits are free: no quota charge, no LLM call.
	if req.GameID != "" {
		cached, err := a.Cache.Get(ctx, req.GameID, today)
		if err != nil {
			log.Printf("analysis cache read failed game=%s: %v", req.GameID, err)
		} else if cached != nil {
			return &models.AnalysisResult{Analysis: &cached.Analysis}, nil
		}
	}

	system, user := buildInitialPrompt(req)
	text, err := a.LLM.Complete(ctx, system, user, initialMaxTokens)
	if err != nil {
		return nil, upstreamError("Analysis failed: " + err.Error())
	}

	analysis, parseErr := parseAnalysis(text)
	if parseErr != nil {
		return nil, upstreamError("Could not parse model response: " + parseErr.Error())
	}

	if err := a.Usage.IncrementUsage(ctx, identity.UserID, today, UsageFieldAnalyses); err != nil {
		log.Printf("usage increment failed user=%s: %v", identity.UserID, err)
	}
	if req.GameID != "" {
		if err := a.Cache.Put(ctx, req.GameID, today, req.Game.SportTitle, *analysis); err != nil {
			log.Printf("analysis cache write failed game=%s: %v", req.GameID, err)
		}
	}

	return &models.AnalysisResult{Analysis: analysis}, nil
}

func (a *Analyzer) analyzeChat(ctx context.Context, identity Identity, req models.AnalyzeRequest, limits models.TierLimits, today string) (*models.AnalysisResult, *RequestError) {
	if limits.Questions == 0 {
		return nil, forbidden(CodeTierLocked, "Follow-up questions are not included in your plan")
	}

	usage, err := a.Usage.GetUsage(ctx, identity.UserID, today)
	if err != nil {
		return nil, upstreamError("Failed to read usage: " + err.Error())
	}
	if quotaExceeded(usage.Questions, limits.Questions) {
		return nil, forbidden(CodeLimitReached, "Daily question limit reached")
	}

	system := buildChatPrompt(req)
	text, err := a.LLM.Complete(ctx, system, req.UserQuery, chatMaxTokens)
	if err != nil {
		return nil, upstreamError("Analysis failed: " + err.Error())
	}

	// Chat answers are returned raw and never cached.
	if err := a.Usage.IncrementUsage(ctx, identity.UserID, today, UsageFieldQuestions); err != nil {
		log.Printf("usage increment failed user=%s: %v", identity.UserID, err)
	}

	return &models.AnalysisResult{Text: text}, nil
}

// injuryReport formats the injury snapshot for the prompt. The analysis
// proceeds even without injury data; the placeholder says so explicitly.
func injuryReport(injuries []models.Injury) string {
	if len(injuries) == 0 {
		return "\nINJURY REPORT: No injury data available."
	}

	var b strings.Builder
	b.WriteString("\nINJURY REPORT:")
	for _, i := range injuries {
		b.WriteString(fmt.Sprintf("\n  %s - %s: %s", i.Team, i.Player, i.Status))
		if i.Injury != "" {
			b.WriteString(" (" + i.Injury + ")")
		}
	}
	return b.String()
}

func buildInitialPrompt(req models.AnalyzeRequest) (system, user string) {
	system = `You are a sharp sports betting AI analyst for FadeOdds. You analyze games for expert bettors.
You will receive a game, real sportsbook odds data, and an injury report.
CRITICAL: You MUST respond with ONLY valid JSON. No markdown, no extra text. Use this exact format:
{
  "tiles": [
    {"label": "string", "val": "string"},
    {"label": "string", "val": "string"},
    {"label": "string", "val": "string"},
    {"label": "string", "val": "string"}
  ],
  "expertTake": "string (2 sharp sentences on the market edge and where the value is)",
  "recommendation": "string (e.g. 'Lakers -3.5' or 'OVER 224.5' or 'PHI Moneyline')",
  "confidence": number (integer 55-92),
  "edge": "string (e.g. 'Line value on home spread' or 'Public overreacting to last game')"
}
For the tiles, use sharp betting metrics like: implied probability, best ML value, spread consensus, line movement signal, public bet %, sharp money indicator, key injury impact, or home/away ATS record. If notable players are questionable/out, factor that into your analysis.`

	user = fmt.Sprintf(`Analyze this game for sharp bettors:
Game: %s @ %s
Sport: %s
Time: %s
Real Sportsbook Odds: %s
%s

Provide 4 sharp intelligence tiles, your expert take, and your top recommendation.`,
		req.Game.AwayTeam, req.Game.HomeTeam,
		req.Game.SportTitle, req.Game.CommenceTime,
		string(req.OddsData), injuryReport(req.InjuryData))

	return system, user
}

func buildChatPrompt(req models.AnalyzeRequest) string {
	return fmt.Sprintf(`You are a sharp sports betting analyst for FadeOdds.
Game context: %s @ %s (%s).
Real odds data from sportsbooks: %s.%s
Answer follow-up questions concisely and sharply. If asked about player availability or injuries, use the injury report above. Keep answers under 3 sentences.`,
		req.Game.AwayTeam, req.Game.HomeTeam, req.Game.SportTitle,
		string(req.OddsData), injuryReport(req.InjuryData))
}

// parseAnalysis parses the model's reply, recovering from chatter around
// the JSON object by extracting the first balanced {...} substring.
func parseAnalysis(text string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		obj, ok := extractJSONObject(text)
		if !ok {
			return nil, fmt.Errorf("no JSON object in model output")
		}
		if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
			return nil, err
		}
	}
	if err := validateAnalysis(&analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// extractJSONObject returns the first balanced top-level {...} substring.
// Braces inside JSON strings are skipped.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// validateAnalysis rejects payloads that parsed as JSON but do not meet
// the Analysis contract, rather than silently accepting them.
func validateAnalysis(a *models.Analysis) error {
	if len(a.Tiles) != 4 {
		return fmt.Errorf("expected 4 tiles, got %d", len(a.Tiles))
	}
	for i, tile := range a.Tiles {
		if strings.TrimSpace(tile.Label) == "" {
			return fmt.Errorf("tile %d has empty label", i)
		}
	}
	if strings.TrimSpace(a.ExpertTake) == "" {
		return fmt.Errorf("missing expertTake")
	}
	if strings.TrimSpace(a.Recommendation) == "" {
		return fmt.Errorf("missing recommendation")
	}
	if strings.TrimSpace(a.Edge) == "" {
		return fmt.Errorf("missing edge")
	}
	if a.Confidence < 55 || a.Confidence > 92 {
		return fmt.Errorf("confidence %d out of range [55,92]", a.Confidence)
	}
	return nil
}
