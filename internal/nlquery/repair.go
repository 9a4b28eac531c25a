package nlquery

import (
	"regexp"
	"strings"
)

// Repair kinds, reported for diagnostics and metrics.
const (
	RepairFinalStatsShape  = "final_stats_shape"
	RepairNegativeDeltas   = "negative_delta_shape"
	RepairCreatorID        = "creator_id"
	RepairDateRange        = "date_range"
	RepairDateTruncWrapper = "date_trunc_wrapper"
)

var (
	creatorClausePattern = regexp.MustCompile(`(?i)creator_id\s*=\s*'[^']*'`)
	betweenDatesPattern  = regexp.MustCompile(`(?i)BETWEEN\s+'(\d{4}-\d{2}-\d{2})[^']*'\s+AND\s+'(\d{4}-\d{2}-\d{2})[^']*'`)
	lowerBoundPattern    = regexp.MustCompile(`(?i)(>=\s*)'(\d{4}-\d{2}-\d{2})[^']*'`)
	upperBoundPattern    = regexp.MustCompile(`(?i)(<=?\s*)'(\d{4}-\d{2}-\d{2})[^']*'`)
	bareInequalityColumn = regexp.MustCompile(`(?i)\bvideo_created_at(\s*(?:>=|<=?))`)
	wrappedColumnPattern = regexp.MustCompile(`(?i)DATE\s*\(\s*video_created_at\s*\)`)
)

// Repair corrects generative SQL against the entities re-extracted from the
// original question. Each correction is independent and idempotent; the
// returned slice names the corrections that changed the candidate. Repair is
// string surgery over the known failure modes of the model, not a SQL
// rewriter.
func Repair(ents Entities, candidate string) (string, []string) {
	repaired := strings.TrimSpace(candidate)
	var applied []string

	if fixed, ok := repairFinalStatsShape(ents, repaired); ok {
		repaired = fixed
		applied = append(applied, RepairFinalStatsShape)
	}
	if fixed, ok := repairNegativeDeltaShape(ents, repaired); ok {
		repaired = fixed
		applied = append(applied, RepairNegativeDeltas)
	}
	if fixed, ok := repairCreatorID(ents, repaired); ok {
		repaired = fixed
		applied = append(applied, RepairCreatorID)
	}
	repaired, dateRepairs := repairDateRange(ents, repaired)
	applied = append(applied, dateRepairs...)

	return repaired, applied
}

// The model tends to answer "final statistics" questions from the snapshot
// table. When the question has the creator+threshold+final shape and the
// candidate uses the wrong table, the whole candidate is replaced with the
// canonical count.
func repairFinalStatsShape(ents Entities, candidate string) (string, bool) {
	if ents.CreatorID == "" || !ents.HasThreshold || !ents.MentionsFinal || ents.MentionsSnapshots {
		return candidate, false
	}
	lower := strings.ToLower(candidate)
	if strings.Contains(lower, "video_snapshots") || !strings.Contains(lower, "videos") {
		canonical := renderCreatorFinalViews(ents.CreatorID, ents.Threshold)
		return canonical, canonical != candidate
	}
	return candidate, false
}

// The negative-delta shape is unambiguous, so the candidate is always
// replaced with the canonical count, date filters included.
func repairNegativeDeltaShape(ents Entities, candidate string) (string, bool) {
	if !ents.MentionsSnapshots || !ents.MentionsNegative || !ents.MentionsViews || ents.DateFrom != "" {
		return candidate, false
	}
	canonical := renderNegativeViewDeltas()
	return canonical, canonical != candidate
}

// Only the equality-filter clause is rewritten; JOIN conditions and anything
// else referencing the column stay untouched.
func repairCreatorID(ents Entities, candidate string) (string, bool) {
	if ents.CreatorID == "" {
		return candidate, false
	}
	replacement := "creator_id = '" + ents.CreatorID + "'"
	fixed := creatorClausePattern.ReplaceAllString(candidate, replacement)
	return fixed, fixed != candidate
}

func repairDateRange(ents Entities, candidate string) (string, []string) {
	if ents.DateFrom == "" || ents.DateTo == "" {
		return candidate, nil
	}

	var applied []string
	if betweenDatesPattern.MatchString(candidate) {
		fixed := betweenDatesPattern.ReplaceAllString(candidate, "BETWEEN '"+ents.DateFrom+"' AND '"+ents.DateTo+"'")
		if fixed != candidate {
			applied = append(applied, RepairDateRange)
		}
		return fixed, applied
	}

	// No BETWEEN clause: patch the boundary literals independently, then make
	// sure the bare-inequality column is wrapped so timestamps compare at
	// calendar-date granularity.
	fixed := lowerBoundPattern.ReplaceAllString(candidate, "${1}'"+ents.DateFrom+"'")
	fixed = upperBoundPattern.ReplaceAllString(fixed, "${1}'"+ents.DateTo+"'")
	if fixed != candidate {
		applied = append(applied, RepairDateRange)
	}
	if bareInequalityColumn.MatchString(fixed) && !wrappedColumnPattern.MatchString(fixed) {
		fixed = bareInequalityColumn.ReplaceAllString(fixed, "DATE(video_created_at)$1")
		applied = append(applied, RepairDateTruncWrapper)
	}
	return fixed, applied
}
