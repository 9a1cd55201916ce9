package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openregatta/timing-sync/internal/domain/category"
	"github.com/openregatta/timing-sync/internal/domain/competitor"
	"github.com/openregatta/timing-sync/internal/domain/event"
	"github.com/openregatta/timing-sync/internal/domain/race"
	"github.com/openregatta/timing-sync/internal/domain/result"
	"github.com/openregatta/timing-sync/internal/domain/schedule"
	"github.com/openregatta/timing-sync/internal/platform/logging"
	"github.com/openregatta/timing-sync/internal/platform/timeparse"
)

// IngestService drives one payload tree through identity resolution: every
// entity is upserted by its natural key, in document order, so re-running the
// same payload converges instead of duplicating rows.
type IngestService struct {
	eventRepo      event.Repository
	categoryRepo   category.Repository
	competitorRepo competitor.Repository
	raceRepo       race.Repository
	scheduleRepo   schedule.Repository
	resultRepo     result.Repository
	providerID     int64
	referenceYear  int
	logger         *logging.Logger
}

func NewIngestService(
	eventRepo event.Repository,
	categoryRepo category.Repository,
	competitorRepo competitor.Repository,
	raceRepo race.Repository,
	scheduleRepo schedule.Repository,
	resultRepo result.Repository,
	providerID int64,
	referenceYear int,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	if referenceYear <= 0 {
		referenceYear = time.Now().UTC().Year()
	}

	return &IngestService{
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		competitorRepo: competitorRepo,
		raceRepo:       raceRepo,
		scheduleRepo:   scheduleRepo,
		resultRepo:     resultRepo,
		providerID:     providerID,
		referenceYear:  referenceYear,
		logger:         logger,
	}
}

// ProcessPayload resolves the full record tree against the store. A missing
// event identity aborts the payload; a schedule item or result row missing a
// required key is skipped with a diagnostic and its siblings continue.
// Repository failures abort the pass: there is no transaction spanning it,
// and re-running is the recovery path because every write is idempotent.
func (s *IngestService) ProcessPayload(ctx context.Context, payload Payload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.ProcessPayload")
	defer span.End()

	eventName := strings.TrimSpace(payload.Info.Name)
	startDate := strings.TrimSpace(payload.Info.StartDate)
	if eventName == "" || startDate == "" {
		return fmt.Errorf("%w: event name and start date are required", ErrInvalidInput)
	}

	endDate := strings.TrimSpace(payload.Info.EndDate)
	if endDate == "" {
		endDate = startDate
	}

	eventID, err := s.eventRepo.Upsert(ctx, event.Event{
		Name:       eventName,
		StartDate:  startDate,
		EndDate:    endDate,
		Location:   strings.TrimSpace(payload.Info.Location),
		ProviderID: s.providerID,
	})
	if err != nil {
		return fmt.Errorf("upsert event name=%q start_date=%s: %w", eventName, startDate, err)
	}
	s.logger.InfoContext(ctx, "event resolved", "event_id", eventID, "name", eventName, "start_date", startDate)

	refYear := s.resolveReferenceYear(startDate)

	processed := 0
	for idx, item := range payload.Schedule {
		ok, err := s.processScheduleItem(ctx, eventID, eventName, refYear, idx, item)
		if err != nil {
			return err
		}
		if ok {
			processed++
		}
	}

	s.logger.InfoContext(ctx, "payload processed",
		"event_id", eventID,
		"schedule_items", len(payload.Schedule),
		"processed", processed,
	)
	return nil
}

func (s *IngestService) processScheduleItem(
	ctx context.Context,
	eventID int64,
	eventName string,
	refYear int,
	idx int,
	item ScheduleItem,
) (bool, error) {
	raceNum := strings.TrimSpace(item.Race.RaceNum)
	if raceNum == "" {
		s.logger.WarnContext(ctx, "skip schedule item: missing race number", "index", idx)
		return false, nil
	}

	raceDay := s.normalizeRaceDay(ctx, item.Race.RaceDay, refYear)
	raceTime := s.normalizeRaceTime(ctx, item.Race.RaceTime)

	fingerprint := race.Fingerprint(
		eventName,
		stringOrEmpty(raceDay),
		raceNum,
		strings.TrimSpace(item.CatAbbrev),
		strings.TrimSpace(item.RaceAbbrev),
	)

	// item.Race.StartArmed is deliberately not mapped: it is transient
	// console state, not part of the canonical record.
	raceID, err := s.raceRepo.Upsert(ctx, race.Race{
		RaceNum:     raceNum,
		RaceDay:     raceDay,
		RaceTime:    raceTime,
		SubType:     trimPtr(item.Race.SubType),
		Fingerprint: fingerprint,
	})
	if err != nil {
		return false, fmt.Errorf("upsert race num=%s fingerprint=%s: %w", raceNum, fingerprint, err)
	}

	categoryName := strings.TrimSpace(item.Category.Name)
	if categoryName == "" {
		s.logger.WarnContext(ctx, "skip schedule item: missing category name", "index", idx, "race_num", raceNum)
		return false, nil
	}

	categoryID, err := s.categoryRepo.ResolveOrCreate(ctx, category.Category{
		Name:         categoryName,
		Title:        trimPtr(item.Category.Title),
		CourseLength: item.Category.CourseLength,
		Abbreviation: optionalString(item.CatAbbrev),
	})
	if err != nil {
		return false, fmt.Errorf("resolve category name=%q: %w", categoryName, err)
	}

	scheduleID, err := s.scheduleRepo.ResolveOrCreate(ctx, schedule.Entry{
		EventID:    eventID,
		RaceID:     raceID,
		CategoryID: categoryID,
	})
	if err != nil {
		return false, fmt.Errorf("resolve schedule event=%d race=%d category=%d: %w", eventID, raceID, categoryID, err)
	}

	for rowIdx, row := range item.Results {
		if err := s.processResultRow(ctx, scheduleID, raceNum, rowIdx, row); err != nil {
			return false, err
		}
	}

	s.logger.DebugContext(ctx, "schedule item processed",
		"race_num", raceNum,
		"schedule_id", scheduleID,
		"results", len(item.Results),
	)
	return true, nil
}

func (s *IngestService) processResultRow(
	ctx context.Context,
	scheduleID int64,
	raceNum string,
	rowIdx int,
	row ResultRow,
) error {
	nameLong := strings.TrimSpace(row.Competitor.NameLong)
	if nameLong == "" {
		s.logger.WarnContext(ctx, "skip result: missing competitor name", "race_num", raceNum, "row", rowIdx)
		return nil
	}

	lane := strings.TrimSpace(row.LaneBoatNumber)
	if lane == "" {
		s.logger.WarnContext(ctx, "skip result: missing lane/boat number", "race_num", raceNum, "row", rowIdx)
		return nil
	}

	competitorID, err := s.competitorRepo.ResolveOrCreate(ctx, competitor.Competitor{
		NameLong:    nameLong,
		NameShort:   trimPtr(row.Competitor.NameShort),
		Designation: trimPtr(row.Competitor.Designation),
		ExternalID:  trimPtr(row.Competitor.ExternalID),
	})
	if err != nil {
		return fmt.Errorf("resolve competitor name_long=%q: %w", nameLong, err)
	}

	totalTime := s.parseTotalTime(ctx, row.TotalTime)

	if _, err := s.resultRepo.Upsert(ctx, result.Result{
		ScheduleID:      scheduleID,
		CompetitorID:    competitorID,
		LaneBoatNumber:  lane,
		Placement:       s.parsePlacement(ctx, row.Placement),
		StartTime:       s.normalizeResultTime(ctx, "start_time", row.StartTime),
		FinishTime:      s.normalizeResultTime(ctx, "finish_time", row.FinishTime),
		RawTime:         s.normalizeResultTime(ctx, "raw_time", row.RawTime),
		TotalTimeMillis: totalTime,
		Adjustment:      row.Adjustment,
		Handicap:        row.Handicap,
		Remark:          trimPtr(row.Remark),
		Notes:           trimPtr(row.Notes),
	}); err != nil {
		return fmt.Errorf("upsert result schedule=%d lane=%s: %w", scheduleID, lane, err)
	}

	if totalTime != nil {
		s.logger.DebugContext(ctx, "result stored",
			"race_num", raceNum,
			"lane", lane,
			"total_time", timeparse.FormatMillis(*totalTime),
		)
	}

	return nil
}

// resolveReferenceYear pins the year used for M/D race days to the event's
// own start date, falling back to the configured year. One policy for every
// parse: wall-clock time is never consulted mid-pass.
func (s *IngestService) resolveReferenceYear(startDate string) int {
	parts := strings.SplitN(startDate, "-", 2)
	if len(parts) == 2 {
		if year, err := strconv.Atoi(parts[0]); err == nil && year > 0 {
			return year
		}
	}
	return s.referenceYear
}

func (s *IngestService) normalizeRaceDay(ctx context.Context, raw *string, refYear int) *string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	value := strings.TrimSpace(*raw)
	if strings.Count(value, "-") == 2 {
		// Already ISO, typically from the HTML extractor.
		return &value
	}

	parsed, err := timeparse.CalendarDate(value, refYear)
	if err != nil {
		s.logger.WarnContext(ctx, "drop unparseable race day", "value", value, "error", err)
		return nil
	}
	return &parsed
}

func (s *IngestService) normalizeRaceTime(ctx context.Context, raw *string) *string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	value := strings.TrimSpace(*raw)
	if parsed, err := timeparse.ClockTime12(value); err == nil {
		return &parsed
	}
	if parsed, err := timeparse.NormalizeClockTime(value); err == nil {
		return &parsed
	}

	s.logger.WarnContext(ctx, "drop unparseable race time", "value", value)
	return nil
}

func (s *IngestService) normalizeResultTime(ctx context.Context, field string, raw *string) *string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	parsed, err := timeparse.NormalizeClockTime(strings.TrimSpace(*raw))
	if err != nil {
		s.logger.WarnContext(ctx, "drop unparseable result time", "field", field, "value", *raw, "error", err)
		return nil
	}
	return &parsed
}

func (s *IngestService) parseTotalTime(ctx context.Context, raw *string) *int64 {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	millis, err := timeparse.DurationMillis(strings.TrimSpace(*raw))
	if err != nil {
		s.logger.WarnContext(ctx, "drop unparseable total time", "value", *raw, "error", err)
		return nil
	}
	return &millis
}

func (s *IngestService) parsePlacement(ctx context.Context, raw *string) *int64 {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	value, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
	if err != nil {
		s.logger.WarnContext(ctx, "drop unparseable placement", "value", *raw)
		return nil
	}
	return &value
}

func trimPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	return &value
}

func optionalString(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return &value
}

func stringOrEmpty(raw *string) string {
	if raw == nil {
		return ""
	}
	return *raw
}
