package availability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"beautybot/utils"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads availability from a Google spreadsheet with one tab per
// specialist: dates in column A starting at row 2, timeslot columns from B in
// the configured label order.
//
// Sheets offers no server-side compare-and-swap, so ClaimSlot serializes
// claims for the same slot key in-process and re-reads the cell immediately
// before writing. A writer outside this process can still race the
// verify-then-write window; the unique slot-key index on the appointments
// collection catches that residual case at persist time.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	labels        []string
	marker        string
	booked        string
	timeout       time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSheetsSource builds a source from a service-account credentials file.
func NewSheetsSource(ctx context.Context, credentialsFile, spreadsheetID string, labels []string, marker, booked string, timeout time.Duration) (*SheetsSource, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		labels:        labels,
		marker:        marker,
		booked:        booked,
		timeout:       timeout,
		locks:         make(map[string]*sync.Mutex),
	}, nil
}

func (s *SheetsSource) slotLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// specialistTabs lists the sheet tab titles, one per specialist.
func (s *SheetsSource) specialistTabs(ctx context.Context) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list sheet tabs: %w", err)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		titles = append(titles, sh.Properties.Title)
	}
	return titles, nil
}

func (s *SheetsSource) ReadGrid(ctx context.Context) (map[string][]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tabs, err := s.specialistTabs(ctx)
	if err != nil {
		return nil, err
	}

	grids := make(map[string][]Row, len(tabs))
	for _, tab := range tabs {
		rng := fmt.Sprintf("'%s'!A2:%s", tab, columnLetter(len(s.labels)))
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to read grid for %q: %w", tab, err)
		}
		rows := make([]Row, 0, len(resp.Values))
		for _, raw := range resp.Values {
			row := make(Row, 0, len(raw))
			for _, cell := range raw {
				row = append(row, fmt.Sprint(cell))
			}
			rows = append(rows, row)
		}
		grids[tab] = rows
	}
	return grids, nil
}

// cellRef locates the A1 reference of (date, slot) on the specialist's tab.
// A failed read of the date column is a source outage, not a conflict.
func (s *SheetsSource) cellRef(ctx context.Context, specialist, date, slot string) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, fmt.Sprintf("'%s'!A2:A", specialist)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read dates for %q: %v", ErrSourceUnavailable, specialist, err)
	}
	return locateCell(specialist, s.labels, resp.Values, date, slot)
}

// locateCell resolves (date, slot) to an A1 reference given the tab's date
// column. An unknown label or a date missing from the sheet means the caller
// is targeting a cell the grid does not have: that slot cannot be claimed.
func locateCell(specialist string, labels []string, dateColumn [][]interface{}, date, slot string) (string, error) {
	col := 0
	for i, label := range labels {
		if label == slot {
			col = i + 1 // column A holds the date
			break
		}
	}
	if col == 0 {
		return "", fmt.Errorf("%w: unknown timeslot label %q", ErrSlotConflict, slot)
	}
	for i, raw := range dateColumn {
		if len(raw) > 0 && strings.TrimSpace(fmt.Sprint(raw[0])) == date {
			return fmt.Sprintf("'%s'!%s%d", specialist, columnLetter(col), i+2), nil
		}
	}
	return "", fmt.Errorf("%w: date %q not present on sheet %q", ErrSlotConflict, date, specialist)
}

func (s *SheetsSource) readCell(ctx context.Context, ref string) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, ref).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read cell %s: %w", ref, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

func (s *SheetsSource) writeCell(ctx context.Context, ref, value string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, ref, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write cell %s: %w", ref, err)
	}
	return nil
}

func (s *SheetsSource) ClaimSlot(ctx context.Context, specialist, date, slot string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := specialist + "|" + date + "|" + slot
	lock := s.slotLock(key)
	lock.Lock()
	defer lock.Unlock()

	ref, err := s.cellRef(ctx, specialist, date, slot)
	if err != nil {
		return err
	}

	current, err := s.readCell(ctx, ref)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(current), s.marker) {
		return ErrSlotConflict
	}
	if err := s.writeCell(ctx, ref, s.booked); err != nil {
		return err
	}
	utils.GetLogger().Info("claimed slot",
		zap.String("specialist", specialist),
		zap.String("date", date),
		zap.String("slot", slot))
	return nil
}

func (s *SheetsSource) ReleaseSlot(ctx context.Context, specialist, date, slot string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := specialist + "|" + date + "|" + slot
	lock := s.slotLock(key)
	lock.Lock()
	defer lock.Unlock()

	ref, err := s.cellRef(ctx, specialist, date, slot)
	if err != nil {
		return err
	}
	return s.writeCell(ctx, ref, s.marker)
}

// columnLetter converts a zero-based column index to its A1 letter. The grid
// never grows past two letter pairs worth of timeslots.
func columnLetter(idx int) string {
	name := ""
	n := idx
	for {
		name = string(rune('A'+n%26)) + name
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return name
}
