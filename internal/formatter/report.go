package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gazette/internal/classifier"
	"gazette/internal/models"
	"gazette/internal/pipeline"
)

func counts(c pipeline.Counts) string {
	return fmt.Sprintf("%d created, %d updated, %d unchanged", c.Created, c.Updated, c.Unchanged)
}

// Report renders a run report as a two-column table.
func Report(r *pipeline.Report) string {
	failed := make([]string, 0, len(r.FailedDates))
	for _, d := range r.FailedDates {
		failed = append(failed, d.Format(time.DateOnly))
	}

	rows := [][]string{
		{"Run", r.RunID},
		{"Range", r.From.Format(time.DateOnly) + " → " + r.To.Format(time.DateOnly)},
		{"Dates", strconv.Itoa(r.Dates)},
		{"Entries", fmt.Sprintf("%d (%d invalid)", r.Entries, r.Invalid)},
		{"Documents", strconv.Itoa(r.Documents)},
		{"Announcements", counts(r.Announcements)},
		{"Articles", counts(r.Articles)},
		{"Drifted articles", strconv.Itoa(r.Drifted)},
		{"Dropped blocks", strconv.Itoa(r.DroppedBlocks)},
		{"Entry failures", strconv.Itoa(r.Failures)},
		{"Superseded entries", strconv.Itoa(len(r.Superseded))},
		{"Failed dates", strings.Join(failed, ", ")},
		{"Duration", r.Duration().Round(time.Millisecond).String()},
	}

	if r.Cancelled {
		rows = append(rows, []string{"Cancelled", "yes"})
	}

	return Table([]string{"Metric", "Value"}, rows)
}

// Superseded renders each referenced entry with the documents that
// supersede it.
func Superseded(list []pipeline.Supersession) string {
	rows := make([][]string, 0, len(list))

	for _, s := range list {
		rows = append(rows, []string{s.ID, strings.Join(s.By, ", ")})
	}

	return Table([]string{"Entry", "Superseded by"}, rows)
}

// Announcements renders announcements by descending relevance.
func Announcements(list []*models.NormalizedAnnouncement) string {
	sorted := append([]*models.NormalizedAnnouncement(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RelevanceScore != sorted[j].RelevanceScore {
			return sorted[i].RelevanceScore > sorted[j].RelevanceScore
		}

		return sorted[i].EntryRef < sorted[j].EntryRef
	})

	rows := make([][]string, 0, len(sorted))

	for _, a := range sorted {
		positions := ""
		if n, ok := classifier.TotalPositions(a.Quotas); ok {
			positions = strconv.Itoa(n)
		}

		rows = append(rows, []string{
			strconv.Itoa(a.RelevanceScore),
			a.EntryRef,
			string(a.Type),
			string(a.Category),
			positions,
			a.Summary,
		})
	}

	return Table([]string{"Score", "Entry", "Type", "Category", "Positions", "Summary"}, rows)
}

// Articles renders extracted articles in order.
func Articles(list []models.LegalArticle) string {
	rows := make([][]string, 0, len(list))

	for _, a := range list {
		title := ""
		if a.Title != nil {
			title = *a.Title
		}

		rows = append(rows, []string{a.Number.String(), title, strconv.Itoa(len([]rune(a.Content)))})
	}

	return Table([]string{"Article", "Title", "Chars"}, rows)
}
