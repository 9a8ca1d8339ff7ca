package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"beautybot/models"
	"beautybot/services/availability"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeSource is an in-memory availability grid with atomic conditional
// claims, mirroring the read-verify-write the sheet source performs.
type fakeSource struct {
	mu       sync.Mutex
	cells    map[string]string
	claims   int
	releases int
}

func newFakeSource(cells map[string]string) *fakeSource {
	return &fakeSource{cells: cells}
}

func cellKey(specialist, date, slot string) string {
	return specialist + "|" + date + "|" + slot
}

func (s *fakeSource) ReadGrid(_ context.Context) (map[string][]availability.Row, error) {
	return nil, nil
}

func (s *fakeSource) ClaimSlot(_ context.Context, specialist, date, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims++
	key := cellKey(specialist, date, slot)
	if s.cells[key] != "x" {
		return availability.ErrSlotConflict
	}
	s.cells[key] = "booked"
	return nil
}

func (s *fakeSource) ReleaseSlot(_ context.Context, specialist, date, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	s.cells[cellKey(specialist, date, slot)] = "x"
	return nil
}

func (s *fakeSource) cell(specialist, date, slot string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells[cellKey(specialist, date, slot)]
}

type fakeCatalog struct {
	services    map[string]models.Service
	specialists map[string]models.Specialist
}

func (c *fakeCatalog) GetServices(category string) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range c.services {
		if category == "" || svc.Category == category {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetServiceByID(id string) (*models.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (c *fakeCatalog) GetSpecialists() ([]models.Specialist, error) {
	var out []models.Specialist
	for _, sp := range c.specialists {
		out = append(out, sp)
	}
	return out, nil
}

func (c *fakeCatalog) GetSpecialistByID(id string) (*models.Specialist, error) {
	sp, ok := c.specialists[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

// fakeAppointments enforces the unique slot-key index in memory: a second
// insert for the same (specialistId, dateTime) fails the way mongo does.
type fakeAppointments struct {
	mu      sync.Mutex
	byID    map[string]models.Appointment
	bySlot  map[string]string
	failErr error
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{
		byID:   make(map[string]models.Appointment),
		bySlot: make(map[string]string),
	}
}

func slotKey(specialistID string, dateTime time.Time) string {
	return specialistID + "|" + dateTime.UTC().Format(time.RFC3339)
}

func (r *fakeAppointments) Create(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	key := slotKey(appt.SpecialistID, appt.DateTime)
	if _, exists := r.bySlot[key]; exists {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	}
	appt.CreatedAt = time.Now()
	r.bySlot[key] = appt.ID
	r.byID[appt.ID] = *appt
	return nil
}

func (r *fakeAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &appt, nil
}

func (r *fakeAppointments) GetAll(_ context.Context, from time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.byID {
		if !appt.DateTime.Before(from) {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (r *fakeAppointments) seed(specialistID string, dateTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySlot[slotKey(specialistID, dateTime)] = "external"
}

type fakeNotifier struct {
	mu      sync.Mutex
	entries []string
}

func (n *fakeNotifier) EnqueueEvent(appt *models.Appointment, calendarID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, appt.ID+"|"+calendarID)
	return nil
}

func testCommitter(source *fakeSource, appts *fakeAppointments, notifier Notifier) *Committer {
	return &Committer{
		Source:       source,
		Appointments: appts,
		Catalog: &fakeCatalog{
			services: map[string]models.Service{
				"svc-hair": {ID: "svc-hair", Name: "Haircut", Category: "women"},
			},
			specialists: map[string]models.Specialist{
				"sp-maria": {ID: "sp-maria", Name: "Maria", ServiceIDs: []string{"svc-hair"}, CalendarID: "cal-maria"},
			},
		},
		Sessions: NewMemorySessionStore(),
		Notifier: notifier,
		Location: time.UTC,
		Logger:   zap.NewNop(),
	}
}

func readySession(chatID int64) *models.BookingSession {
	return &models.BookingSession{
		ChatID:         chatID,
		Date:           "2025-12-01",
		ServiceID:      "svc-hair",
		ServiceName:    "Haircut",
		SpecialistID:   "sp-maria",
		SpecialistName: "Maria",
		Timeslot:       "10:00 - 11:00",
		Client:         &models.Client{ID: "cl-1", TelegramID: chatID, Name: "Olena"},
	}
}

func TestCommit_BooksSlot(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	appts := newFakeAppointments()
	notifier := &fakeNotifier{}
	committer := testCommitter(source, appts, notifier)

	session := readySession(100)
	appt, err := committer.Commit(context.Background(), session)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if appt.SpecialistName != "Maria" || appt.ServiceName != "Haircut" || appt.Timeslot != "10:00 - 11:00" {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
	wantStart := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	if !appt.DateTime.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, appt.DateTime)
	}
	if got := source.cell("Maria", "01/12/2025", "10:00 - 11:00"); got != "booked" {
		t.Fatalf("expected cell booked, got %q", got)
	}
	if session.AppointmentID != appt.ID {
		t.Fatalf("session not linked to appointment: %q", session.AppointmentID)
	}

	stored, err := committer.Sessions.Get(context.Background(), 100)
	if err != nil || stored == nil || stored.AppointmentID != appt.ID {
		t.Fatalf("committed session not saved: %+v err=%v", stored, err)
	}
	if len(notifier.entries) != 1 {
		t.Fatalf("expected one calendar event, got %v", notifier.entries)
	}
}

func TestCommit_RaceExactlyOneWins(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	committer := testCommitter(source, newFakeAppointments(), &fakeNotifier{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = committer.Commit(context.Background(), readySession(int64(200+i)))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner, got %d wins / %d conflicts", wins, conflicts)
	}
}

func TestCommit_Idempotent(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	committer := testCommitter(source, newFakeAppointments(), &fakeNotifier{})

	session := readySession(300)
	first, err := committer.Commit(context.Background(), session)
	if err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	second, err := committer.Commit(context.Background(), session)
	if err != nil {
		t.Fatalf("duplicate commit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same appointment, got %q and %q", first.ID, second.ID)
	}
	if source.claims != 1 {
		t.Fatalf("duplicate commit must not claim again, claims=%d", source.claims)
	}
}

// A double-tapped confirm delivers two callbacks for the same chat. Handlers
// run them one after the other, so the second tap reloads the session the
// first commit saved; it must get the existing appointment back, not a
// conflict against its own booking.
func TestCommit_DoubleTapReloadedSession(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	committer := testCommitter(source, newFakeAppointments(), &fakeNotifier{})

	ctx := context.Background()
	first, err := committer.Commit(ctx, readySession(350))
	if err != nil {
		t.Fatalf("first tap failed: %v", err)
	}

	reloaded, err := committer.Sessions.Get(ctx, 350)
	if err != nil || reloaded == nil {
		t.Fatalf("committed session not in store: %+v err=%v", reloaded, err)
	}
	second, err := committer.Commit(ctx, reloaded)
	if err != nil {
		t.Fatalf("second tap must be a no-op success, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing appointment, got %q and %q", first.ID, second.ID)
	}
	if source.claims != 1 {
		t.Fatalf("second tap must not claim again, claims=%d", source.claims)
	}
}

func TestCommit_DuplicatePersistKeepsClaim(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	appts := newFakeAppointments()
	// Someone persisted this slot key without going through our claim.
	appts.seed("sp-maria", time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC))
	committer := testCommitter(source, appts, &fakeNotifier{})

	_, err := committer.Commit(context.Background(), readySession(400))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	if source.releases != 0 {
		t.Fatalf("duplicate slot key must not release the cell, releases=%d", source.releases)
	}
	if got := source.cell("Maria", "01/12/2025", "10:00 - 11:00"); got != "booked" {
		t.Fatalf("expected cell to stay booked, got %q", got)
	}
}

func TestCommit_PersistFailureRevertsClaim(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	appts := newFakeAppointments()
	appts.failErr = fmt.Errorf("connection reset")
	committer := testCommitter(source, appts, &fakeNotifier{})

	session := readySession(500)
	_, err := committer.Commit(context.Background(), session)
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if source.releases != 1 {
		t.Fatalf("expected one compensating release, got %d", source.releases)
	}
	if got := source.cell("Maria", "01/12/2025", "10:00 - 11:00"); got != "x" {
		t.Fatalf("expected cell restored to available, got %q", got)
	}
	if session.AppointmentID != "" {
		t.Fatalf("failed commit must not mark the session committed")
	}
}

func TestCommit_SessionNotReady(t *testing.T) {
	committer := testCommitter(newFakeSource(nil), newFakeAppointments(), &fakeNotifier{})

	session := readySession(600)
	session.Client = nil
	if _, err := committer.Commit(context.Background(), session); !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("expected ErrSessionNotReady, got %v", err)
	}
}

func TestCommit_MissingCatalogEntries(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	committer := testCommitter(source, newFakeAppointments(), &fakeNotifier{})

	session := readySession(700)
	session.ServiceID = "svc-gone"
	if _, err := committer.Commit(context.Background(), session); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if source.claims != 0 {
		t.Fatalf("lookup failure must not reach the claim, claims=%d", source.claims)
	}
}

// Walks the whole booking path: resolve open slots from the grid, fill the
// session step by step, commit, then retry from a stale copy of the session
// taken before the claim.
func TestBookingFlow_EndToEnd(t *testing.T) {
	grids := map[string][]availability.Row{
		"Maria": {{"01/12/2025", "", "", "x"}},
	}
	matrix := availability.BuildMatrix(grids, resolverLabels, "x")
	resolver := &Resolver{
		Matrix:      matrix,
		Services:    []models.Service{{ID: "svc-hair", Name: "Haircut"}},
		Specialists: []models.Specialist{{ID: "sp-maria", Name: "Maria", ServiceIDs: []string{"svc-hair"}}},
	}

	session := &models.BookingSession{ChatID: 900}
	session.SetDate("2025-12-01")

	slots := resolver.AvailableTimeslots(session, session.Date)
	if len(slots) != 1 || slots[0] != "10:00 - 11:00" {
		t.Fatalf("expected the single open slot, got %v", slots)
	}
	if err := session.SetTimeslot(slots[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.SetSpecialist("sp-maria", "Maria")
	session.SetService("svc-hair", "Haircut")
	session.SetClient(&models.Client{ID: "cl-1", TelegramID: 900})
	if !session.Ready() {
		t.Fatalf("fully selected session must be ready")
	}
	stale := *session

	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "x",
	})
	appts := newFakeAppointments()
	committer := testCommitter(source, appts, &fakeNotifier{})

	appt, err := committer.Commit(context.Background(), session)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if got := source.cell("Maria", "01/12/2025", "10:00 - 11:00"); got != "booked" {
		t.Fatalf("expected cell booked, got %q", got)
	}

	stale.ChatID = 901
	stale.Client = &models.Client{ID: "cl-2", TelegramID: 901}
	if _, err := committer.Commit(context.Background(), &stale); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict for the lost race, got %v", err)
	}

	if len(appts.byID) != 1 {
		t.Fatalf("expected exactly one appointment, got %d", len(appts.byID))
	}
	if _, ok := appts.byID[appt.ID]; !ok {
		t.Fatalf("winning appointment not persisted")
	}
}

func TestCommit_SlotAlreadyTaken(t *testing.T) {
	source := newFakeSource(map[string]string{
		cellKey("Maria", "01/12/2025", "10:00 - 11:00"): "booked",
	})
	committer := testCommitter(source, newFakeAppointments(), &fakeNotifier{})

	session := readySession(800)
	if _, err := committer.Commit(context.Background(), session); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	if session.AppointmentID != "" {
		t.Fatalf("lost claim must leave the session uncommitted")
	}
}
