package importer

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-sdk/pkg/similarity"
)

// Tier classifies the quality of the best match.
type Tier string

const (
	TierExact   Tier = "exact"
	TierFuzzy   Tier = "fuzzy"
	TierPartial Tier = "partial"
	TierNone    Tier = "none"
)

// Score thresholds for tier classification of the best candidate.
const (
	exactScoreMin   = 90
	fuzzyScoreMin   = 75
	partialScoreMin = 60

	// A second-best candidate within this margin of the best makes a fuzzy
	// match ambiguous and forces manual review.
	ambiguityMargin = 10

	// Candidates below this score are never offered as alternatives.
	alternativeScoreMin = 30

	maxAlternatives = 3
)

// MatchingCriteria is the identity subset of an import row.
type MatchingCriteria struct {
	FirstName string
	LastName  string
	TeamName  string
}

// Candidate is a read-only snapshot of an existing record considered as a
// possible match. The matcher never mutates it.
type Candidate struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Emails    []string
	BirthYear int
	Teams     []string
}

// CandidateScore is the per-candidate weighted score, computed fresh for
// every match attempt.
type CandidateScore struct {
	Candidate Candidate
	Score     int
	Reasons   []string
}

// MatchResult is the matcher's decision. Best is non-nil iff Tier != TierNone;
// Confidence is 0 iff Tier == TierNone.
type MatchResult struct {
	Tier                 Tier
	Best                 *CandidateScore
	Alternatives         []CandidateScore
	Confidence           int
	RequiresManualReview bool
}

// FindBestMatch scores every candidate against the criteria and classifies
// the highest-scoring one. Ties are broken by original candidate order. The
// function is pure and total: it never fails for any candidate list.
func FindBestMatch(criteria MatchingCriteria, candidates []Candidate) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{Tier: TierNone}
	}

	scores := make([]CandidateScore, len(candidates))
	for i, c := range candidates {
		scores[i] = scoreCandidate(criteria, c)
	}

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Score > scores[bestIdx].Score {
			bestIdx = i
		}
	}
	best := scores[bestIdx]

	secondBest := 0
	for i, s := range scores {
		if i != bestIdx && s.Score > secondBest {
			secondBest = s.Score
		}
	}

	result := MatchResult{}
	switch {
	case best.Score >= exactScoreMin:
		result.Tier = TierExact
		result.Confidence = best.Score
	case best.Score >= fuzzyScoreMin:
		result.Tier = TierFuzzy
		result.Confidence = best.Score
		result.RequiresManualReview = best.Score-secondBest <= ambiguityMargin
	case best.Score >= partialScoreMin:
		result.Tier = TierPartial
		result.Confidence = best.Score
		result.RequiresManualReview = true
	default:
		return MatchResult{Tier: TierNone}
	}

	result.Best = &best
	result.Alternatives = alternatives(scores, bestIdx)
	return result
}

func scoreCandidate(criteria MatchingCriteria, c Candidate) CandidateScore {
	score := CandidateScore{Candidate: c}

	firstSim := similarity.NamePercent(criteria.FirstName, c.FirstName)
	switch {
	case firstSim >= 99:
		score.add(30, "firstName", "exact", firstSim)
	case firstSim >= 90:
		score.add(25, "firstName", "fuzzy", firstSim)
	case firstSim >= 75:
		score.add(20, "firstName", "partial", firstSim)
	}

	lastSim := similarity.NamePercent(criteria.LastName, c.LastName)
	switch {
	case lastSim >= 99:
		score.add(40, "lastName", "exact", lastSim)
	case lastSim >= 90:
		score.add(30, "lastName", "fuzzy", lastSim)
	case lastSim >= 75:
		score.add(20, "lastName", "partial", lastSim)
	}

	// Team hint is optional; with multiple memberships only the best-scoring
	// one counts.
	if criteria.TeamName != "" && len(c.Teams) > 0 {
		teamSim := 0
		for _, t := range c.Teams {
			if s := similarity.NamePercent(criteria.TeamName, t); s > teamSim {
				teamSim = s
			}
		}
		switch {
		case teamSim >= 99:
			score.add(30, "team", "exact", teamSim)
		case teamSim >= 85:
			score.add(20, "team", "fuzzy", teamSim)
		case teamSim >= 70:
			score.add(10, "team", "partial", teamSim)
		}
	}

	return score
}

func (s *CandidateScore) add(points int, field, level string, sim int) {
	s.Score += points
	s.Reasons = append(s.Reasons, fmt.Sprintf("%s:%s(%d)", field, level, sim))
}

// alternatives returns up to 3 non-selected candidates scoring >= 30, by
// descending score, preserving original order among equals.
func alternatives(scores []CandidateScore, bestIdx int) []CandidateScore {
	var alts []CandidateScore
	for i, s := range scores {
		if i == bestIdx || s.Score < alternativeScoreMin {
			continue
		}
		alts = append(alts, s)
	}
	sort.SliceStable(alts, func(i, j int) bool { return alts[i].Score > alts[j].Score })
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	return alts
}
