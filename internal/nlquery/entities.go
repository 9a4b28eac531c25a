package nlquery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Entities is everything the extractor could pull out of one question.
// Absent values stay at their zero value; extraction never fails.
type Entities struct {
	CreatorID string

	// DateFrom alone means a single calendar date; DateFrom+DateTo mean an
	// inclusive period. Both are ISO (YYYY-MM-DD).
	DateFrom string
	DateTo   string

	HourFrom     int
	HourTo       int
	HasHourRange bool

	Threshold    int64
	HasThreshold bool

	// Month is set when the question names a month and year without a
	// specific day ("в ноябре 2025").
	MonthFrom string
	MonthTo   string
	HasMonth  bool

	MentionsGrowth     bool
	MentionsSnapshots  bool
	MentionsFinal      bool
	MentionsNegative   bool
	MentionsViews      bool
	MentionsPublish    bool
	MentionsCreator    bool
	MentionsDays       bool
	MentionsDistinct   bool
	MentionsAtLeastOne bool
	MentionsTotal      bool
}

var (
	// \W* instead of whitespace so the pattern also hits SQL literals like
	// creator_id = '...' when a rendered query is re-extracted.
	creatorIDPattern  = regexp.MustCompile(`id\W*([0-9a-f]{32})\b`)
	isoDatePattern    = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	singleDatePattern = regexp.MustCompile(`(\d{1,2})\s+ноября\s+2025`)
	periodPattern     = regexp.MustCompile(`с\s+(\d{1,2})(?:\s+ноября(?:\s+2025)?)?\s+по\s+(\d{1,2})\s+ноября\s+2025`)
	hourRangePattern  = regexp.MustCompile(`с\s+(\d{1,2})(?::\d{2})?\s+до\s+(\d{1,2})(?::\d{2})?`)
	thresholdPattern  = regexp.MustCompile(`больше\s+(\d+(?:\s\d{3})*)`)
)

var keywordFlags = []struct {
	assign func(*Entities)
	stems  []string
}{
	{func(e *Entities) { e.MentionsGrowth = true }, []string{"вырос", "прирост", "увелич", "измени"}},
	{func(e *Entities) { e.MentionsSnapshots = true }, []string{"замер", "снапшот", "измерен"}},
	{func(e *Entities) { e.MentionsFinal = true }, []string{"итогов", "накоплен", "финальн"}},
	{func(e *Entities) { e.MentionsNegative = true }, []string{"отрицательн", "минус", "сниз", "упал"}},
	{func(e *Entities) { e.MentionsViews = true }, []string{"просмотр"}},
	{func(e *Entities) { e.MentionsPublish = true }, []string{"публикова", "публикац", "вылож", "выпусти", "выпущен"}},
	{func(e *Entities) { e.MentionsCreator = true }, []string{"креатор"}},
	{func(e *Entities) { e.MentionsDays = true }, []string{"дней", " дня", "днях", "день"}},
	{func(e *Entities) { e.MentionsDistinct = true }, []string{"разны", "различн", "уникальн"}},
	{func(e *Entities) { e.MentionsAtLeastOne = true }, []string{"хотя бы одн", "минимум одн"}},
	{func(e *Entities) { e.MentionsTotal = true }, []string{"суммарн", "всего", "в сумме"}},
}

// Extract pulls structured values out of question text using lexical cues
// only. A pattern that does not occur leaves its field absent.
func Extract(question string) Entities {
	text := strings.ToLower(question)
	// Russian texts often separate thousands with non-breaking spaces.
	text = strings.ReplaceAll(text, " ", " ")

	var ents Entities

	if m := creatorIDPattern.FindStringSubmatch(text); m != nil {
		ents.CreatorID = m[1]
	}

	if m := periodPattern.FindStringSubmatch(text); m != nil {
		ents.DateFrom = isoNovemberDate(m[1])
		ents.DateTo = isoNovemberDate(m[2])
	} else if m := singleDatePattern.FindStringSubmatch(text); m != nil {
		ents.DateFrom = isoNovemberDate(m[1])
	} else if dates := isoDatePattern.FindAllString(text, 2); len(dates) > 0 {
		ents.DateFrom = dates[0]
		if len(dates) > 1 {
			ents.DateTo = dates[1]
		}
	}

	// The hour pattern requires "до" so it never swallows the "с D1 по D2"
	// period phrase above.
	if m := hourRangePattern.FindStringSubmatch(text); m != nil {
		from, errFrom := strconv.Atoi(m[1])
		to, errTo := strconv.Atoi(m[2])
		if errFrom == nil && errTo == nil && from < 24 && to <= 24 {
			ents.HourFrom = from
			ents.HourTo = to
			ents.HasHourRange = true
		}
	}

	if m := thresholdPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], " ", "")
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
			ents.Threshold = value
			ents.HasThreshold = true
		}
	}

	if strings.Contains(text, "ноябр") && strings.Contains(text, "2025") {
		ents.MonthFrom = "2025-11-01"
		ents.MonthTo = "2025-11-30"
		ents.HasMonth = true
	}

	for _, flag := range keywordFlags {
		for _, stem := range flag.stems {
			if strings.Contains(text, stem) {
				flag.assign(&ents)
				break
			}
		}
	}

	return ents
}

func isoNovemberDate(day string) string {
	value, err := strconv.Atoi(day)
	if err != nil || value < 1 || value > 30 {
		return ""
	}
	return fmt.Sprintf("2025-11-%02d", value)
}
