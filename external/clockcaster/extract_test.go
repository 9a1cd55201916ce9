package clockcaster

import (
	"strings"
	"testing"
)

const resultsPageFixture = `<!DOCTYPE html>
<html><body>
<div class="eventHeadingTitleWrap"><h1 class="eventHeadingTitle">Head Of The River</h1></div>
<div class="eventHeadingDate">12/8/2024</div>
<span class="eventHeadingVenue">Willamette River</span>
<span class="eventHeadingVenue">Portland, OR</span>

<h4>12: [12/8] 7:30 AM - Mens Varsity 8 (MV8)</h4>
<h5>Flight A</h5>
<table>
  <tbody class="result-body">
    <tr><th>4</th><td><strong>PDX</strong><br>Portland Boat Club</td></tr>
    <tr><th>5</th><td><strong>RCR</strong><br>River City Rowing</td></tr>
    <tr><td>malformed</td><td>two tds</td></tr>
  </tbody>
</table>

<h4>13: [12/8]- Womens Varsity 8 (WV8)</h4>
<table>
  <tbody class="result-body">
    <tr><th>1</th><td><strong>BAY</strong><br>Bay Rowing Club</td></tr>
  </tbody>
</table>

<h4>Awards Ceremony</h4>
</body></html>`

func TestExtractResultsPage(t *testing.T) {
	t.Parallel()

	payload, err := ExtractResultsPage(strings.NewReader(resultsPageFixture))
	if err != nil {
		t.Fatalf("ExtractResultsPage returned error: %v", err)
	}

	if payload.Info.Name != "Head Of The River" {
		t.Fatalf("unexpected event name %q", payload.Info.Name)
	}
	if payload.Info.StartDate != "2024-12-08" || payload.Info.EndDate != "2024-12-08" {
		t.Fatalf("unexpected dates %q / %q", payload.Info.StartDate, payload.Info.EndDate)
	}
	if payload.Info.Location != "Willamette River, Portland, OR" {
		t.Fatalf("unexpected location %q", payload.Info.Location)
	}

	// The header without " - " never makes it into the schedule.
	if len(payload.Schedule) != 2 {
		t.Fatalf("expected 2 schedule items, got %d", len(payload.Schedule))
	}

	first := payload.Schedule[0]
	if first.CatAbbrev != "MV8" {
		t.Fatalf("unexpected cat abbreviation %q", first.CatAbbrev)
	}
	if first.Category.Name != "Mens Varsity 8" {
		t.Fatalf("unexpected category name %q", first.Category.Name)
	}
	if first.Race.RaceNum != "12" {
		t.Fatalf("unexpected race number %q", first.Race.RaceNum)
	}
	if first.Race.RaceDay == nil || *first.Race.RaceDay != "2024-12-08" {
		t.Fatalf("race day not anchored to event year: %v", first.Race.RaceDay)
	}
	if first.Race.RaceTime == nil || *first.Race.RaceTime != "7:30 AM" {
		t.Fatalf("unexpected race time: %v", first.Race.RaceTime)
	}
	if first.Race.SubType == nil || *first.Race.SubType != "Flight A" {
		t.Fatalf("unexpected sub type: %v", first.Race.SubType)
	}

	if len(first.Results) != 2 {
		t.Fatalf("malformed row should be dropped, got %d results", len(first.Results))
	}
	row := first.Results[0]
	if row.LaneBoatNumber != "4" {
		t.Fatalf("unexpected lane %q", row.LaneBoatNumber)
	}
	if row.Competitor.NameShort == nil || *row.Competitor.NameShort != "PDX" {
		t.Fatalf("unexpected short name: %v", row.Competitor.NameShort)
	}
	if row.Competitor.NameLong != "Portland Boat Club" {
		t.Fatalf("unexpected long name %q", row.Competitor.NameLong)
	}

	// Second header is missing the space before the dash; normalization makes
	// it split anyway.
	second := payload.Schedule[1]
	if second.CatAbbrev != "WV8" {
		t.Fatalf("unexpected cat abbreviation %q", second.CatAbbrev)
	}
	if second.Race.RaceNum != "13" {
		t.Fatalf("unexpected race number %q", second.Race.RaceNum)
	}
	if second.Race.RaceTime != nil {
		t.Fatalf("no time tokens in second header, got %v", *second.Race.RaceTime)
	}
	if len(second.Results) != 1 || second.Results[0].Competitor.NameLong != "Bay Rowing Club" {
		t.Fatalf("unexpected second results: %+v", second.Results)
	}
}

func TestExtractResultsPage_CategoryWithoutParens(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<h4>1: - Open Water</h4>
<h4>2: [5/1] - Masters Mixed Quad</h4>
</body></html>`

	payload, err := ExtractResultsPage(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ExtractResultsPage returned error: %v", err)
	}
	if len(payload.Schedule) != 2 {
		t.Fatalf("expected 2 schedule items, got %d", len(payload.Schedule))
	}

	// Without parentheses the category name doubles as the abbreviation.
	item := payload.Schedule[1]
	if item.CatAbbrev != "Masters Mixed Quad" || item.Category.Name != "Masters Mixed Quad" {
		t.Fatalf("unexpected category fields: %+v", item)
	}
	// No event start date on this page, so the fallback year anchors the day.
	if item.Race.RaceDay == nil || *item.Race.RaceDay != "2024-05-01" {
		t.Fatalf("unexpected race day: %v", item.Race.RaceDay)
	}
}

func TestExtractResultsPage_EmptyDocument(t *testing.T) {
	t.Parallel()

	payload, err := ExtractResultsPage(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ExtractResultsPage returned error: %v", err)
	}
	if payload.Info.Name != "" || len(payload.Schedule) != 0 {
		t.Fatalf("expected empty payload, got %+v", payload)
	}
}
