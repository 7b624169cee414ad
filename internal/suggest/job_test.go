package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/datatypes"
)

// fakeStore is an in-memory Store for job tests.
type fakeStore struct {
	automations    []models.ActiveAutomation
	existing       map[uint]bool // automation id -> suggestion exists today
	messages       []models.Message
	tasks          []models.Task
	created        []*models.ActiveSuggestion
	touched        []uint
	messagesErr    error
	createErr      error
	automationsErr error
}

func (f *fakeStore) ActiveAutomations(ctx context.Context) ([]models.ActiveAutomation, error) {
	return f.automations, f.automationsErr
}

func (f *fakeStore) HasSuggestionOn(ctx context.Context, automationID uint, day time.Time) (bool, error) {
	return f.existing[automationID], nil
}

func (f *fakeStore) RecentMessages(ctx context.Context, clientID uint, since time.Time, limit int) ([]models.Message, error) {
	return f.messages, f.messagesErr
}

func (f *fakeStore) OpenTasks(ctx context.Context, clientID uint, limit int) ([]models.Task, error) {
	return f.tasks, nil
}

func (f *fakeStore) CreateSuggestion(ctx context.Context, s *models.ActiveSuggestion) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	if f.existing == nil {
		f.existing = map[uint]bool{}
	}
	f.existing[s.AutomationID] = true
	return nil
}

func (f *fakeStore) TouchAutomation(ctx context.Context, automationID uint, at time.Time) error {
	f.touched = append(f.touched, automationID)
	return nil
}

// fakeChatter returns a canned reply or error per call.
type fakeChatter struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatter) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow is a Wednesday at 10:00 UTC.
var fixedNow = time.Date(2025, time.June, 4, 10, 0, 0, 0, time.UTC)

func automation(id, clientID uint, name string, weekdays ...int) models.ActiveAutomation {
	if len(weekdays) == 0 {
		weekdays = []int{0, 1, 2, 3, 4, 5, 6}
	}
	parts := make([]string, len(weekdays))
	for i, d := range weekdays {
		parts[i] = fmt.Sprint(d)
	}
	a := models.ActiveAutomation{
		OrganizationID: 1,
		ClientID:       clientID,
		Weekdays:       datatypes.JSON("[" + strings.Join(parts, ",") + "]"),
		TimeOfDay:      "09:00",
		ContextDays:    7,
		Active:         true,
		Client:         models.Client{Name: name},
		Organization:   models.Organization{Timezone: "UTC"},
	}
	a.ID = id
	return a
}

func TestRunGeneratesSuggestion(t *testing.T) {
	store := &fakeStore{
		automations: []models.ActiveAutomation{automation(1, 10, "Padaria do Bairro")},
		messages:    []models.Message{{Direction: models.DirectionInbound, Body: "Oi, tudo bem?"}},
		tasks:       []models.Task{{Title: "Enviar proposta", Status: models.TaskStatusOpen}},
	}
	chat := &fakeChatter{reply: `["Oi! Como foi a semana?", "Bom dia! Alguma novidade?"]`}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Generated != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 generated, got %+v", result)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 suggestion created, got %d", len(store.created))
	}

	s := store.created[0]
	if s.Status != models.SuggestionStatusPending {
		t.Errorf("expected pending status, got %q", s.Status)
	}
	if s.SuggestedMessage != "Oi! Como foi a semana?" {
		t.Errorf("expected first option as suggested message, got %q", s.SuggestedMessage)
	}
	if got := s.OptionList(); len(got) != 2 {
		t.Errorf("expected 2 options, got %v", got)
	}
	wantDay := time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)
	if !s.SuggestionDate.Equal(wantDay) {
		t.Errorf("expected suggestion date %v, got %v", wantDay, s.SuggestionDate)
	}
	if len(store.touched) != 1 || store.touched[0] != 1 {
		t.Errorf("expected automation 1 touched, got %v", store.touched)
	}
}

func TestRunSkipsWrongWeekday(t *testing.T) {
	// fixedNow is a Wednesday (3); schedule is Monday only
	store := &fakeStore{
		automations: []models.ActiveAutomation{automation(1, 10, "Padaria", 1)},
	}
	chat := &fakeChatter{reply: `["x"]`}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, _ := job.Run(context.Background())

	if result.Skipped != 1 || result.Generated != 0 {
		t.Errorf("expected 1 skipped, got %+v", result)
	}
	if chat.calls != 0 {
		t.Errorf("expected no LLM calls, got %d", chat.calls)
	}
}

func TestRunSkipsBeforeTimeOfDay(t *testing.T) {
	auto := automation(1, 10, "Padaria")
	auto.TimeOfDay = "18:00" // fixedNow is 10:00
	store := &fakeStore{automations: []models.ActiveAutomation{auto}}
	chat := &fakeChatter{reply: `["x"]`}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, _ := job.Run(context.Background())

	if result.Skipped != 1 || result.Generated != 0 {
		t.Errorf("expected 1 skipped, got %+v", result)
	}
	if !containsLog(result.Logs, "not due until 18:00") {
		t.Errorf("expected not-due log line, got %v", result.Logs)
	}
}

func TestRunSkipsDuplicateDay(t *testing.T) {
	store := &fakeStore{
		automations: []models.ActiveAutomation{automation(1, 10, "Padaria")},
		existing:    map[uint]bool{1: true},
	}
	chat := &fakeChatter{reply: `["x"]`}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, _ := job.Run(context.Background())

	if result.Skipped != 1 || result.Generated != 0 {
		t.Errorf("expected duplicate skip, got %+v", result)
	}
	if chat.calls != 0 {
		t.Errorf("expected no LLM calls for duplicate, got %d", chat.calls)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	// Two automations; the first one's context fetch fails, the second
	// must still generate.
	broken := automation(1, 10, "Cliente Quebrado")
	healthy := automation(2, 20, "Cliente Saudável")

	store := &failingStore{
		fakeStore: fakeStore{
			automations: []models.ActiveAutomation{broken, healthy},
		},
		failClientID: 10,
	}
	chat := &fakeChatter{reply: `["Tudo certo por aí?"]`}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}

	if result.Failed != 1 || result.Generated != 1 {
		t.Fatalf("expected 1 failed + 1 generated, got %+v", result)
	}
	if !containsLog(result.Logs, "error for Cliente Quebrado") {
		t.Errorf("expected failure log naming the client, got %v", result.Logs)
	}
	if len(store.created) != 1 || store.created[0].ClientID != 20 {
		t.Errorf("expected suggestion for the healthy client only, got %v", store.created)
	}
}

// failingStore fails RecentMessages for one client id.
type failingStore struct {
	fakeStore
	failClientID uint
}

func (f *failingStore) RecentMessages(ctx context.Context, clientID uint, since time.Time, limit int) ([]models.Message, error) {
	if clientID == f.failClientID {
		return nil, errors.New("connection reset")
	}
	return f.fakeStore.RecentMessages(ctx, clientID, since, limit)
}

func TestRunLLMFailureCountsAsFailed(t *testing.T) {
	store := &fakeStore{
		automations: []models.ActiveAutomation{automation(1, 10, "Padaria")},
	}
	chat := &fakeChatter{err: errors.New("rate limited")}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}

	if result.Failed != 1 {
		t.Errorf("expected 1 failed, got %+v", result)
	}
	if len(store.created) != 0 {
		t.Errorf("expected no suggestion persisted, got %d", len(store.created))
	}
}

func TestRunConcurrentInsertIsSkip(t *testing.T) {
	// CreateSuggestion fails, but a row now exists for the day: the unique
	// index fired, so this run skips instead of failing.
	store := &raceStore{
		fakeStore: fakeStore{
			automations: []models.ActiveAutomation{automation(1, 10, "Padaria")},
			createErr:   errors.New("SQLSTATE 23505"),
		},
	}
	chat := &fakeChatter{reply: `["x"]`}

	job := NewJob(store, chat, testLogger(), func() time.Time { return fixedNow })
	result, _ := job.Run(context.Background())

	if result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("expected concurrent insert to skip, got %+v", result)
	}
}

// raceStore reports the row as existing only after the failed insert.
type raceStore struct {
	fakeStore
	inserted bool
}

func (r *raceStore) HasSuggestionOn(ctx context.Context, automationID uint, day time.Time) (bool, error) {
	return r.inserted, nil
}

func (r *raceStore) CreateSuggestion(ctx context.Context, s *models.ActiveSuggestion) error {
	r.inserted = true
	return r.createErr
}

func TestRunOrgTimezoneEligibility(t *testing.T) {
	// Sao Paulo is UTC-3, so 01:00 UTC Wednesday is 22:00 Tuesday local.
	// An automation scheduled for Tuesday must fire then.
	auto := automation(1, 10, "Padaria", 2) // Tuesday only
	auto.Organization.Timezone = "America/Sao_Paulo"
	store := &fakeStore{automations: []models.ActiveAutomation{auto}}
	chat := &fakeChatter{reply: `["Boa noite!"]`}

	early := time.Date(2025, time.June, 4, 1, 0, 0, 0, time.UTC) // Wed 01:00 UTC
	job := NewJob(store, chat, testLogger(), func() time.Time { return early })
	result, _ := job.Run(context.Background())

	if result.Generated != 1 {
		t.Fatalf("expected generation in org-local Tuesday, got %+v", result)
	}
	// The suggestion day is the org-local calendar day
	wantDay := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)
	if !store.created[0].SuggestionDate.Equal(wantDay) {
		t.Errorf("expected local day %v, got %v", wantDay, store.created[0].SuggestionDate)
	}
}

func containsLog(logs []string, substr string) bool {
	for _, l := range logs {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
