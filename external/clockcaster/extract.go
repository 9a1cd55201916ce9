package clockcaster

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/openregatta/timing-sync/internal/usecase"
)

// headerDashRegex restores the space the page sometimes drops between the
// bracketed date and the dash, so "[12/8]- Mens..." splits like "[12/8] - Mens...".
var headerDashRegex = regexp.MustCompile(`\]-`)

const fallbackHeaderYear = "2024"

// ExtractResultsPage parses a saved ClockCaster results page into the shared
// payload shape. Headers that do not follow the "<left> - <category>" layout
// and rows that do not match the lane/competitor cell structure are skipped
// rather than failing the whole page.
func ExtractResultsPage(r io.Reader) (usecase.Payload, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return usecase.Payload{}, fmt.Errorf("parse results page: %w", err)
	}

	payload := usecase.Payload{
		Info: extractEventInfo(doc),
	}

	// Selections preserve document order, so scanning one combined h4/h5/table
	// selection pairs each header with the first h5 and table that follow it
	// anywhere later in the page.
	sections := doc.Find("h4, h5, table")
	sections.Each(func(i int, sel *goquery.Selection) {
		if !isElement(sel, "h4") {
			return
		}
		item, ok := extractScheduleItem(sel, sections, i, payload.Info.StartDate)
		if !ok {
			return
		}
		payload.Schedule = append(payload.Schedule, item)
	})

	return payload, nil
}

func extractEventInfo(doc *goquery.Document) usecase.EventInfo {
	info := usecase.EventInfo{
		Name: strings.TrimSpace(doc.Find(".eventHeadingTitleWrap h1.eventHeadingTitle").First().Text()),
	}

	if rawDate := strings.TrimSpace(doc.Find(".eventHeadingDate").First().Text()); rawDate != "" {
		parts := strings.Split(rawDate, "/")
		if len(parts) == 3 {
			info.StartDate = fmt.Sprintf("%s-%s-%s", parts[2], zeroPad(parts[0]), zeroPad(parts[1]))
			info.EndDate = info.StartDate
		} else {
			info.StartDate = rawDate
		}
	}

	var locationParts []string
	doc.Find(".eventHeadingVenue").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			locationParts = append(locationParts, text)
		}
	})
	info.Location = strings.Join(locationParts, ", ")

	return info
}

func extractScheduleItem(header, sections *goquery.Selection, headerIndex int, eventStartDate string) (usecase.ScheduleItem, bool) {
	headerText := headerDashRegex.ReplaceAllString(strings.TrimSpace(header.Text()), "] -")
	parts := strings.SplitN(headerText, " - ", 2)
	if len(parts) < 2 {
		return usecase.ScheduleItem{}, false
	}

	catName, catAbbrev := splitCategoryPart(parts[1])
	if catAbbrev == "" {
		return usecase.ScheduleItem{}, false
	}

	item := usecase.ScheduleItem{
		CatAbbrev: catAbbrev,
		Category:  usecase.CategoryData{Name: catName},
		Race:      extractRaceHeading(parts[0], eventStartDate),
	}

	if subType := firstFollowingText(sections, headerIndex, "h5"); subType != "" {
		item.Race.SubType = &subType
	}

	if table := firstFollowing(sections, headerIndex, "table"); table != nil {
		item.Results = extractResultRows(table)
	}

	return item, true
}

// splitCategoryPart separates "Mens Varsity 8 (MV8)" into name and
// abbreviation. Without parentheses the full text doubles as both.
func splitCategoryPart(categoryPart string) (name, abbrev string) {
	name = strings.TrimSpace(categoryPart)
	open := strings.Index(categoryPart, "(")
	close := strings.Index(categoryPart, ")")
	if open >= 0 && close > open {
		abbrev = strings.TrimSpace(categoryPart[open+1 : close])
		name = strings.TrimSpace(categoryPart[:open])
	}
	if abbrev == "" {
		abbrev = name
	}
	return name, abbrev
}

// clockTokenRegex matches a clock token with or without an attached meridiem
// marker ("7:30", "7:30AM").
var clockTokenRegex = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}(AM|PM)?$`)

// extractRaceHeading parses the left side of a header such as
// "12: [12/8] 7:30 AM". The race number loses its trailing colon, the time is
// recognized by shape so token order does not matter, and the bracketed M/D
// date is anchored to the event year.
func extractRaceHeading(leftPart, eventStartDate string) usecase.RaceData {
	race := usecase.RaceData{}
	tokens := strings.Fields(leftPart)
	if len(tokens) == 0 {
		return race
	}

	race.RaceNum = strings.TrimSuffix(tokens[0], ":")

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]

		if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
			dateParts := strings.Split(strings.Trim(token, "[]"), "/")
			if len(dateParts) != 2 {
				continue
			}
			year := fallbackHeaderYear
			if segments := strings.Split(eventStartDate, "-"); len(segments) == 3 {
				year = segments[0]
			}
			raceDay := fmt.Sprintf("%s-%s-%s", year, zeroPad(dateParts[0]), zeroPad(dateParts[1]))
			race.RaceDay = &raceDay
			continue
		}

		if race.RaceTime == nil && clockTokenRegex.MatchString(token) {
			raceTime := token
			if i+1 < len(tokens) && isMeridiem(tokens[i+1]) {
				raceTime += " " + tokens[i+1]
				i++
			}
			race.RaceTime = &raceTime
		}
	}

	return race
}

func isMeridiem(token string) bool {
	upper := strings.ToUpper(token)
	return upper == "AM" || upper == "PM"
}

func extractResultRows(table *goquery.Selection) []usecase.ResultRow {
	var rows []usecase.ResultRow
	table.Find("tbody.result-body").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		ths := row.Find("th")
		tds := row.Find("td")
		if ths.Length() != 1 || tds.Length() != 1 {
			return
		}

		entry := usecase.ResultRow{
			LaneBoatNumber: strings.TrimSpace(ths.First().Text()),
		}

		cell := tds.First()
		if nameShort := strings.TrimSpace(cell.Find("strong").First().Text()); nameShort != "" {
			entry.Competitor.NameShort = &nameShort
		}
		entry.Competitor.NameLong = textAfterBreak(cell)

		rows = append(rows, entry)
	})
	return rows
}

// textAfterBreak returns the text node directly after the first <br> in the
// cell, where the page places the full crew name.
func textAfterBreak(cell *goquery.Selection) string {
	br := cell.Find("br").First()
	if br.Length() == 0 {
		return ""
	}
	sibling := br.Nodes[0].NextSibling
	if sibling == nil || sibling.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(sibling.Data)
}

func firstFollowing(sections *goquery.Selection, after int, tag string) *goquery.Selection {
	var found *goquery.Selection
	sections.Each(func(i int, sel *goquery.Selection) {
		if found != nil || i <= after {
			return
		}
		if isElement(sel, tag) {
			found = sel
		}
	})
	return found
}

func firstFollowingText(sections *goquery.Selection, after int, tag string) string {
	sel := firstFollowing(sections, after, tag)
	if sel == nil {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

func isElement(sel *goquery.Selection, tag string) bool {
	return len(sel.Nodes) > 0 && sel.Nodes[0].Type == html.ElementNode && sel.Nodes[0].Data == tag
}

func zeroPad(value string) string {
	value = strings.TrimSpace(value)
	if len(value) == 1 {
		return "0" + value
	}
	return value
}
