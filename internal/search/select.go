package search

import (
	"log/slog"
	"slices"
	"strings"

	"cratedig/internal/config"
	"cratedig/internal/logging"
	"cratedig/internal/track"
)

// rejectKeywords disqualify a candidate whose title contains any of them.
var rejectKeywords = []string{
	"reaction", "review", "cover", "karaoke", "instrumental",
	"tutorial", "how to", "lesson", "behind the scenes",
}

// officialIndicators mark likely-canonical uploads. The signal is computed
// and logged for audit but never gates acceptance; candidate order from the
// index decides. Kept inert deliberately.
var officialIndicators = []string{
	"official", "vevo", "records", "music", "audio only", "lyrics",
}

// Selector applies duration and keyword policy to ranked candidates.
type Selector struct {
	minDuration float64
	maxDuration float64
	reject      []string
	logger      *slog.Logger
}

// NewSelector builds a Selector from search settings. Reject keywords from
// configuration extend the built-in list.
func NewSelector(cfg config.Search, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	keywords := append([]string(nil), rejectKeywords...)
	for _, keyword := range cfg.RejectKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && !slices.Contains(keywords, keyword) {
			keywords = append(keywords, keyword)
		}
	}
	return &Selector{
		minDuration: float64(cfg.MinDurationSeconds),
		maxDuration: float64(cfg.MaxDurationSeconds),
		reject:      keywords,
		logger:      logging.NewComponentLogger(logger, "selector"),
	}
}

// Select returns the first candidate passing all filters, in index order.
// The boolean is false when every candidate is rejected.
func (s *Selector) Select(query string, candidates []track.Candidate) (track.Candidate, bool) {
	for _, candidate := range candidates {
		reason, ok := s.evaluate(candidate)
		if !ok {
			attrs := append(logging.DecisionAttrs("candidate_filter", "rejected", reason),
				logging.String("query", query),
				logging.String("candidate_title", candidate.Title),
				logging.Float64("duration_seconds", candidate.DurationSeconds),
			)
			s.logger.Debug("candidate rejected", logging.Args(attrs...)...)
			continue
		}
		attrs := append(logging.DecisionAttrs("candidate_filter", "accepted", "passed filters"),
			logging.String("query", query),
			logging.String("candidate_title", candidate.Title),
			logging.Float64("duration_seconds", candidate.DurationSeconds),
			logging.Bool("official_indicator", hasOfficialIndicator(candidate.Title)),
		)
		s.logger.Debug("candidate accepted", logging.Args(attrs...)...)
		return candidate, true
	}
	return track.Candidate{}, false
}

// evaluate returns a rejection reason, or ok=true when the candidate passes.
func (s *Selector) evaluate(candidate track.Candidate) (string, bool) {
	if candidate.DurationSeconds < s.minDuration || candidate.DurationSeconds > s.maxDuration {
		return "duration out of bounds", false
	}
	title := strings.ToLower(candidate.Title)
	for _, keyword := range s.reject {
		if strings.Contains(title, keyword) {
			return "reject keyword: " + keyword, false
		}
	}
	return "", true
}

func hasOfficialIndicator(title string) bool {
	title = strings.ToLower(title)
	for _, indicator := range officialIndicators {
		if strings.Contains(title, indicator) {
			return true
		}
	}
	return false
}
