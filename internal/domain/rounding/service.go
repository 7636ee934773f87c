package rounding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service owns the working set of sheets and serializes every mutation.
// Each successful mutation stamps UpdatedAt and persists the whole collection.
// Reads return deep copies so callers can render them without locking.
type Service struct {
	mu        sync.Mutex
	repo      WorkspaceRepository
	key       string
	logger    zerolog.Logger
	now       func() time.Time
	checklist []string
	sheets    []*Sheet
	notifier  ChangeNotifier
}

func NewService(repo WorkspaceRepository, key string, logger zerolog.Logger) *Service {
	if key == "" {
		key = DefaultWorkspaceKey
	}
	return &Service{
		repo:      repo,
		key:       key,
		logger:    logger,
		now:       time.Now,
		checklist: DefaultChecklist,
	}
}

// SetClock replaces the time source used for dates and UpdatedAt.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetNotifier registers n to hear about every committed change.
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// SetDefaultChecklist replaces the checklist labels given to new sheets.
func (s *Service) SetDefaultChecklist(labels []string) error {
	if _, err := NewChecklist(labels); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checklist = append([]string(nil), labels...)
	return nil
}

// Load reads the stored workspace. A missing workspace, or one written with a
// different schema version, is replaced by the demo sheets, which are saved
// at once so their ids survive a restart.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheets, err := s.repo.Load(ctx, s.key)
	switch {
	case err == nil && len(sheets) > 0:
		s.sheets = sheets
		s.logger.Info().Str("workspace", s.key).Int("sheets", len(sheets)).Msg("workspace loaded")
		return nil
	case err == nil, errors.Is(err, ErrWorkspaceNotFound):
		s.logger.Info().Str("workspace", s.key).Msg("no stored workspace, using demo sheets")
	case errors.Is(err, ErrSchemaVersion):
		s.logger.Warn().Err(err).Str("workspace", s.key).Msg("discarding stored workspace")
	default:
		return fmt.Errorf("load workspace: %w", err)
	}
	demo := DemoSheets(s.now())
	if err := s.persist(ctx, demo); err != nil {
		return err
	}
	s.sheets = demo
	return nil
}

// ListSheets returns sheets most recently updated first.
func (s *Service) ListSheets(_ context.Context, limit, offset int) ([]*Sheet, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]*Sheet(nil), s.sheets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	total := len(sorted)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]*Sheet, 0, end-offset)
	for _, sh := range sorted[offset:end] {
		out = append(out, sh.Clone())
	}
	return out, total, nil
}

// GetSheet returns a snapshot of the sheet with the given id.
func (s *Service) GetSheet(_ context.Context, id uuid.UUID) (*Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrSheetNotFound
	}
	return s.sheets[i].Clone(), nil
}

// CreateSheet appends a blank sheet for name.
func (s *Service) CreateSheet(ctx context.Context, name string) (*Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, err := newBlankAt(name, s.checklist, s.now())
	if err != nil {
		return nil, err
	}
	next := append(append([]*Sheet(nil), s.sheets...), sh)
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.sheets = next
	s.notify(ctx, ChangeCreated, sh.ID, sh)
	return sh.Clone(), nil
}

// SheetPatch carries the editable fields of a sheet. Nil fields are left
// alone; sub-records replace the stored sub-record wholesale.
// ClearDayOfAdmit removes the day of admission and cannot be combined with
// DayOfAdmit.
type SheetPatch struct {
	PatientName     *string         `json:"patient_name"`
	Room            *string         `json:"room"`
	DateISO         *string         `json:"date_iso"`
	Diagnosis       *string         `json:"diagnosis"`
	DayOfAdmit      *int            `json:"day_of_admit"`
	ClearDayOfAdmit bool            `json:"clear_day_of_admit"`
	OneLiner        *string         `json:"one_liner"`
	NeuroExam       *NeuroExam      `json:"neuro_exam"`
	ClinicalScores  *ClinicalScores `json:"clinical_scores"`
	Vitals          *Vitals         `json:"vitals"`
	LinesTubes      *string         `json:"lines_tubes"`
	Drips           *string         `json:"drips"`
	Labs            *string         `json:"labs"`
	Imaging         *string         `json:"imaging"`
	Notes           *string         `json:"notes"`
}

func (p SheetPatch) apply(sh *Sheet) error {
	if p.ClearDayOfAdmit && p.DayOfAdmit != nil {
		return fmt.Errorf("%w: day_of_admit and clear_day_of_admit are exclusive", ErrInvalidSheet)
	}
	setString(&sh.PatientName, p.PatientName)
	setString(&sh.Room, p.Room)
	setString(&sh.DateISO, p.DateISO)
	setString(&sh.Diagnosis, p.Diagnosis)
	setString(&sh.OneLiner, p.OneLiner)
	setString(&sh.LinesTubes, p.LinesTubes)
	setString(&sh.Drips, p.Drips)
	setString(&sh.Labs, p.Labs)
	setString(&sh.Imaging, p.Imaging)
	setString(&sh.Notes, p.Notes)
	if p.DayOfAdmit != nil {
		sh.DayOfAdmit = clonePtr(p.DayOfAdmit)
	}
	if p.ClearDayOfAdmit {
		sh.DayOfAdmit = nil
	}
	if p.NeuroExam != nil {
		sh.NeuroExam = p.NeuroExam.clone()
	}
	if p.Vitals != nil {
		sh.Vitals = p.Vitals.clone()
	}
	if p.ClinicalScores != nil {
		sh.ClinicalScores = p.ClinicalScores.clone()
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (s *Service) UpdateSheet(ctx context.Context, id uuid.UUID, patch SheetPatch) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		return patch.apply(sh)
	})
}

// ToggleChecklist flips one checklist item.
func (s *Service) ToggleChecklist(ctx context.Context, id uuid.UUID, label string) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		_, err := sh.Checklist.Toggle(label)
		return err
	})
}

// ApplyDiagnosis tags the sheet and prefills diagnosis defaults.
func (s *Service) ApplyDiagnosis(ctx context.Context, id uuid.UUID, dt DiagnosisType) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		return sh.ApplyDiagnosis(dt)
	})
}

// AddProblem appends p with a fresh id. A blank title becomes "New problem".
func (s *Service) AddProblem(ctx context.Context, id uuid.UUID, p Problem) (*Sheet, error) {
	p.ID = uuid.New()
	if p.Title == "" {
		p.Title = "New problem"
	}
	return s.mutate(ctx, id, func(sh *Sheet) error {
		sh.Problems = append(sh.Problems, p)
		return nil
	})
}

type ProblemPatch struct {
	Title      *string `json:"title"`
	Assessment *string `json:"assessment"`
	Plan       *string `json:"plan"`
	Category   *string `json:"category"`
}

func (s *Service) UpdateProblem(ctx context.Context, id, problemID uuid.UUID, patch ProblemPatch) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		i := sh.ProblemIndex(problemID)
		if i < 0 {
			return ErrProblemNotFound
		}
		p := &sh.Problems[i]
		setString(&p.Title, patch.Title)
		setString(&p.Assessment, patch.Assessment)
		setString(&p.Plan, patch.Plan)
		setString(&p.Category, patch.Category)
		return nil
	})
}

func (s *Service) RemoveProblem(ctx context.Context, id, problemID uuid.UUID) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		i := sh.ProblemIndex(problemID)
		if i < 0 {
			return ErrProblemNotFound
		}
		sh.Problems = append(sh.Problems[:i:i], sh.Problems[i+1:]...)
		return nil
	})
}

// AddTask appends t with a fresh id. A blank task becomes "New task" due today.
func (s *Service) AddTask(ctx context.Context, id uuid.UUID, t Task) (*Sheet, error) {
	t.ID = uuid.New()
	if t.Text == "" {
		t.Text = "New task"
		if t.Due == "" {
			t.Due = DueToday
		}
	}
	return s.mutate(ctx, id, func(sh *Sheet) error {
		sh.Tasks = append(sh.Tasks, t)
		return nil
	})
}

type TaskPatch struct {
	Text     *string  `json:"text"`
	Done     *bool    `json:"done"`
	Due      *DueSlot `json:"due"`
	Priority *string  `json:"priority"`
}

func (s *Service) UpdateTask(ctx context.Context, id, taskID uuid.UUID, patch TaskPatch) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		i := sh.TaskIndex(taskID)
		if i < 0 {
			return ErrTaskNotFound
		}
		t := &sh.Tasks[i]
		setString(&t.Text, patch.Text)
		setString(&t.Priority, patch.Priority)
		if patch.Done != nil {
			t.Done = *patch.Done
		}
		if patch.Due != nil {
			t.Due = *patch.Due
		}
		return nil
	})
}

func (s *Service) RemoveTask(ctx context.Context, id, taskID uuid.UUID) (*Sheet, error) {
	return s.mutate(ctx, id, func(sh *Sheet) error {
		i := sh.TaskIndex(taskID)
		if i < 0 {
			return ErrTaskNotFound
		}
		sh.Tasks = append(sh.Tasks[:i:i], sh.Tasks[i+1:]...)
		return nil
	})
}

// RemoveSheet drops a sheet from the working set. At least one sheet always
// remains.
func (s *Service) RemoveSheet(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrSheetNotFound
	}
	if len(s.sheets) <= 1 {
		return ErrLastSheet
	}
	next := make([]*Sheet, 0, len(s.sheets)-1)
	next = append(next, s.sheets[:i]...)
	next = append(next, s.sheets[i+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.sheets = next
	s.notify(ctx, ChangeDeleted, id, nil)
	return nil
}

// Reset clears the stored workspace and returns to the demo sheets.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("reset workspace: %w", err)
	}
	demo := DemoSheets(s.now())
	if err := s.persist(ctx, demo); err != nil {
		return err
	}
	s.sheets = demo
	s.logger.Info().Str("workspace", s.key).Msg("workspace reset to demo sheets")
	s.notify(ctx, ChangeReset, uuid.Nil, nil)
	return nil
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Sheet) error) (*Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrSheetNotFound
	}
	draft := s.sheets[i].Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	draft.Touch(s.now())

	next := append([]*Sheet(nil), s.sheets...)
	next[i] = draft
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.sheets = next
	s.notify(ctx, ChangeUpdated, draft.ID, draft)
	return draft.Clone(), nil
}

func (s *Service) persist(ctx context.Context, sheets []*Sheet) error {
	if err := s.repo.Save(ctx, s.key, sheets); err != nil {
		s.logger.Error().Err(err).Str("workspace", s.key).Msg("failed to persist workspace")
		return fmt.Errorf("persist workspace: %w", err)
	}
	return nil
}

// notify must be called with mu held.
func (s *Service) notify(ctx context.Context, kind ChangeKind, id uuid.UUID, sh *Sheet) {
	if s.notifier == nil {
		return
	}
	c := Change{Kind: kind, SheetID: id, At: s.now()}
	if sh != nil {
		c.Sheet = sh.Clone()
	}
	s.notifier.Notify(ctx, c)
}

func (s *Service) indexOf(id uuid.UUID) int {
	for i, sh := range s.sheets {
		if sh.ID == id {
			return i
		}
	}
	return -1
}
