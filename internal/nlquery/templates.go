package nlquery

import "fmt"

// Shape identifies a recognized question archetype.
type Shape string

const (
	ShapeCreatorHourlyGrowth   Shape = "creator_hourly_growth"
	ShapeMonthlyPublishedViews Shape = "monthly_published_views"
	ShapeNegativeViewDeltas    Shape = "negative_view_deltas"
	ShapeCreatorPublishDays    Shape = "creator_publish_days"
	ShapeCreatorsOverThreshold Shape = "creators_over_threshold"
	ShapeCreatorPeriodCount    Shape = "creator_period_count"
	ShapeCreatorFinalViews     Shape = "creator_final_views"
)

type template struct {
	shape   Shape
	matches func(Entities) bool
	render  func(Entities) string
}

// Several rules can look eligible at once; the order is the tie-break.
// The creator+snapshot-join shape goes first because it is the one the
// generative model gets wrong most often.
var templates = []template{
	{
		shape: ShapeCreatorHourlyGrowth,
		matches: func(e Entities) bool {
			return e.CreatorID != "" && e.HasHourRange && e.DateFrom != "" && e.MentionsGrowth
		},
		render: func(e Entities) string {
			return renderCreatorHourlyGrowth(e.CreatorID, e.DateFrom, e.HourFrom, e.HourTo)
		},
	},
	{
		shape: ShapeMonthlyPublishedViews,
		matches: func(e Entities) bool {
			return e.CreatorID == "" && e.HasMonth && e.MentionsViews &&
				(e.MentionsPublish || e.MentionsTotal)
		},
		render: func(e Entities) string {
			return fmt.Sprintf(
				"SELECT COALESCE(SUM(views_count), 0) FROM videos WHERE DATE(video_created_at) BETWEEN '%s' AND '%s'",
				e.MonthFrom, e.MonthTo)
		},
	},
	{
		shape: ShapeNegativeViewDeltas,
		matches: func(e Entities) bool {
			return e.MentionsSnapshots && e.MentionsNegative && e.MentionsViews && e.DateFrom == ""
		},
		render: func(Entities) string {
			return renderNegativeViewDeltas()
		},
	},
	{
		shape: ShapeCreatorPublishDays,
		matches: func(e Entities) bool {
			return e.CreatorID != "" && e.MentionsDays && e.MentionsDistinct &&
				e.HasMonth && e.MentionsPublish
		},
		render: func(e Entities) string {
			return fmt.Sprintf(
				"SELECT COUNT(DISTINCT DATE(video_created_at)) FROM videos WHERE creator_id = '%s' AND DATE(video_created_at) BETWEEN '%s' AND '%s'",
				e.CreatorID, e.MonthFrom, e.MonthTo)
		},
	},
	{
		shape: ShapeCreatorsOverThreshold,
		matches: func(e Entities) bool {
			return e.CreatorID == "" && e.MentionsCreator && e.MentionsAtLeastOne &&
				e.MentionsViews && e.HasThreshold
		},
		render: func(e Entities) string {
			return fmt.Sprintf(
				"SELECT COUNT(DISTINCT creator_id) FROM videos WHERE views_count > %d",
				e.Threshold)
		},
	},
	{
		shape: ShapeCreatorPeriodCount,
		matches: func(e Entities) bool {
			return e.CreatorID != "" && e.DateFrom != "" && e.DateTo != "" &&
				(e.MentionsPublish || e.MentionsCreator)
		},
		render: func(e Entities) string {
			return fmt.Sprintf(
				"SELECT COUNT(*) FROM videos WHERE creator_id = '%s' AND DATE(video_created_at) BETWEEN '%s' AND '%s'",
				e.CreatorID, e.DateFrom, e.DateTo)
		},
	},
	{
		shape: ShapeCreatorFinalViews,
		matches: func(e Entities) bool {
			return e.CreatorID != "" && e.HasThreshold && e.MentionsFinal &&
				(e.MentionsCreator || e.MentionsViews)
		},
		render: func(e Entities) string {
			return renderCreatorFinalViews(e.CreatorID, e.Threshold)
		},
	},
}

// Match walks the archetype list top-down and renders the first eligible
// template. The second return is false when no archetype applies; that is a
// normal outcome, control then passes to the generative translator.
func Match(ents Entities) (string, Shape, bool) {
	for _, tpl := range templates {
		if tpl.matches(ents) {
			return tpl.render(ents), tpl.shape, true
		}
	}
	return "", "", false
}

// Canonical renders shared with the repair engine.

func renderCreatorHourlyGrowth(creatorID, date string, hourFrom, hourTo int) string {
	return fmt.Sprintf(
		"SELECT COALESCE(SUM(s.delta_views_count), 0) FROM video_snapshots s JOIN videos v ON s.video_id = v.id "+
			"WHERE v.creator_id = '%s' AND DATE(s.created_at) = '%s' "+
			"AND EXTRACT(HOUR FROM s.created_at) >= %d AND EXTRACT(HOUR FROM s.created_at) < %d",
		creatorID, date, hourFrom, hourTo)
}

func renderNegativeViewDeltas() string {
	return "SELECT COUNT(*) FROM video_snapshots WHERE delta_views_count < 0"
}

func renderCreatorFinalViews(creatorID string, threshold int64) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM videos WHERE creator_id = '%s' AND views_count > %d",
		creatorID, threshold)
}
