// Package memory holds in-memory repositories with the same semantics as the
// postgresql ones. Service tests run against it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
)

var (
	_ company.CompanyRepository = (*CompanyRepository)(nil)
	_ company.HolidayRepository = (*HolidayRepository)(nil)
	_ user.UserRepository       = (*UserRepository)(nil)
	_ team.TeamRepository       = (*TeamRepository)(nil)
	_ clock.EventRepository     = (*EventRepository)(nil)
	_ absence.AbsenceRepository = (*AbsenceRepository)(nil)
	_ database.Transactor       = Transactor{}
)

// Store is one shared dataset. The repository views below all read and
// write it.
type Store struct {
	mu        sync.RWMutex
	companies map[string]company.Company
	holidays  map[string]company.Holiday
	users     map[string]user.User
	teams     map[string]team.Team
	events    map[string]clock.Event
	absences  map[string]absence.Absence
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		companies: make(map[string]company.Company),
		holidays:  make(map[string]company.Holiday),
		users:     make(map[string]user.User),
		teams:     make(map[string]team.Team),
		events:    make(map[string]clock.Event),
		absences:  make(map[string]absence.Absence),
		now:       time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

// Transactor runs fn directly; the store has no isolation to offer beyond
// its mutex.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- companies ----

type CompanyRepository struct{ s *Store }

func (s *Store) Companies() *CompanyRepository { return &CompanyRepository{s} }

func (r *CompanyRepository) Create(ctx context.Context, c company.Company) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.companies[c.ID] = c
	return c, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (r *CompanyRepository) UpdatePolicy(ctx context.Context, c company.Company) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.companies[c.ID]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = r.s.now()
	r.s.companies[c.ID] = c
	return c, nil
}

func (r *CompanyRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.companies))
	for id := range r.s.companies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type HolidayRepository struct{ s *Store }

func (s *Store) Holidays() *HolidayRepository { return &HolidayRepository{s} }

func (r *HolidayRepository) Create(ctx context.Context, h company.Holiday) (company.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.holidays {
		if existing.CompanyID == h.CompanyID && dateKey(existing.Date) == dateKey(h.Date) {
			return company.Holiday{}, company.ErrHolidayExists
		}
	}
	h.ID = newID()
	h.CreatedAt = r.s.now()
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *HolidayRepository) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.holidays[id]
	if !ok || h.CompanyID != companyID {
		return company.ErrHolidayNotFound
	}
	delete(r.s.holidays, id)
	return nil
}

func (r *HolidayRepository) List(ctx context.Context, companyID string, from, to time.Time) ([]company.Holiday, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]company.Holiday, 0)
	for _, h := range r.s.holidays {
		k := dateKey(h.Date)
		if h.CompanyID == companyID && k >= dateKey(from) && k <= dateKey(to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ---- users ----

type UserRepository struct{ s *Store }

func (s *Store) Users() *UserRepository { return &UserRepository{s} }

func (r *UserRepository) withTeamName(u user.User) user.User {
	u.TeamName = nil
	if u.TeamID != nil {
		if t, ok := r.s.teams[*u.TeamID]; ok {
			name := t.Name
			u.TeamName = &name
		}
	}
	return u
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	u.ID = newID()
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return r.withTeamName(u), nil
}

func (r *UserRepository) GetByID(ctx context.Context, companyID, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok || u.CompanyID != companyID {
		return user.User{}, user.ErrUserNotFound
	}
	return r.withTeamName(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			return r.withTeamName(u), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok || old.CompanyID != u.CompanyID {
		return user.User{}, user.ErrUserNotFound
	}
	u.Email = strings.ToLower(u.Email)
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = r.s.now()
	r.s.users[u.ID] = u
	return r.withTeamName(u), nil
}

func (r *UserRepository) SetTeam(ctx context.Context, companyID, userID string, teamID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok || u.CompanyID != companyID {
		return user.ErrUserNotFound
	}
	u.TeamID = teamID
	r.s.users[userID] = u
	return nil
}

func (r *UserRepository) sorted(match func(user.User) bool) []user.User {
	out := make([]user.User, 0)
	for _, u := range r.s.users {
		if match(u) {
			out = append(out, r.withTeamName(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *UserRepository) List(ctx context.Context, f user.UserFilter) ([]user.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.sorted(func(u user.User) bool {
		if u.CompanyID != f.CompanyID {
			return false
		}
		if f.Role != nil && u.Role != *f.Role {
			return false
		}
		if f.TeamID != nil && (u.TeamID == nil || *u.TeamID != *f.TeamID) {
			return false
		}
		if f.Active != nil && u.IsActive != *f.Active {
			return false
		}
		if f.Search != nil && *f.Search != "" {
			q := strings.ToLower(*f.Search)
			if !strings.Contains(strings.ToLower(u.FullName), q) && !strings.Contains(u.Email, q) {
				return false
			}
		}
		return true
	})
	return paginate(all, f.Page, f.Limit), int64(len(all)), nil
}

func (r *UserRepository) ListByTeam(ctx context.Context, companyID, teamID string) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(u user.User) bool {
		return u.CompanyID == companyID && u.IsActive && u.TeamID != nil && *u.TeamID == teamID
	}), nil
}

func (r *UserRepository) ListActive(ctx context.Context, companyID string) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(u user.User) bool { return u.CompanyID == companyID && u.IsActive }), nil
}

// ---- teams ----

type TeamRepository struct{ s *Store }

func (s *Store) Teams() *TeamRepository { return &TeamRepository{s} }

func (r *TeamRepository) joined(t team.Team) team.Team {
	t.ManagerName = nil
	if t.ManagerID != nil {
		if m, ok := r.s.users[*t.ManagerID]; ok {
			name := m.FullName
			t.ManagerName = &name
		}
	}
	t.MemberCount = 0
	for _, u := range r.s.users {
		if u.IsActive && u.TeamID != nil && *u.TeamID == t.ID {
			t.MemberCount++
		}
	}
	return t
}

func (r *TeamRepository) nameTaken(companyID, name, exceptID string) bool {
	for id, t := range r.s.teams {
		if id != exceptID && t.CompanyID == companyID && t.Name == name {
			return true
		}
	}
	return false
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(t.CompanyID, t.Name, "") {
		return team.Team{}, team.ErrTeamNameExists
	}
	t.ID = newID()
	t.CreatedAt = r.s.now()
	t.UpdatedAt = t.CreatedAt
	r.s.teams[t.ID] = t
	return r.joined(t), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, companyID, id string) (team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok || t.CompanyID != companyID {
		return team.Team{}, team.ErrTeamNotFound
	}
	return r.joined(t), nil
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.teams[t.ID]
	if !ok || old.CompanyID != t.CompanyID {
		return team.Team{}, team.ErrTeamNotFound
	}
	if r.nameTaken(t.CompanyID, t.Name, t.ID) {
		return team.Team{}, team.ErrTeamNameExists
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = r.s.now()
	r.s.teams[t.ID] = t
	return r.joined(t), nil
}

func (r *TeamRepository) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok || t.CompanyID != companyID {
		return team.ErrTeamNotFound
	}
	delete(r.s.teams, id)
	for uid, u := range r.s.users {
		if u.TeamID != nil && *u.TeamID == id {
			u.TeamID = nil
			r.s.users[uid] = u
		}
	}
	return nil
}

func (r *TeamRepository) List(ctx context.Context, companyID string, managerID *string) ([]team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]team.Team, 0)
	for _, t := range r.s.teams {
		if t.CompanyID != companyID {
			continue
		}
		if managerID != nil && !t.ManagedBy(*managerID) {
			continue
		}
		out = append(out, r.joined(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- clock events ----

type EventRepository struct{ s *Store }

func (s *Store) Events() *EventRepository { return &EventRepository{s} }

func (r *EventRepository) joined(e clock.Event) clock.Event {
	if u, ok := r.s.users[e.UserID]; ok {
		name := u.FullName
		e.UserName = &name
	}
	return e
}

func eventLess(a, b clock.Event) bool {
	if !a.At.Equal(b.At) {
		return a.At.Before(b.At)
	}
	return a.ID < b.ID
}

func (r *EventRepository) Create(ctx context.Context, e clock.Event) (clock.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = newID()
	e.CreatedAt = r.s.now()
	r.s.events[e.ID] = e
	return r.joined(e), nil
}

func (r *EventRepository) GetByID(ctx context.Context, companyID, id string) (clock.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok || e.CompanyID != companyID {
		return clock.Event{}, clock.ErrEventNotFound
	}
	return r.joined(e), nil
}

func (r *EventRepository) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.CompanyID != companyID {
		return clock.ErrEventNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *EventRepository) LockUser(ctx context.Context, userID string) error {
	return nil
}

func (r *EventRepository) Last(ctx context.Context, userID string) (clock.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var (
		last  clock.Event
		found bool
	)
	for _, e := range r.s.events {
		if e.UserID == userID && (!found || eventLess(last, e)) {
			last, found = e, true
		}
	}
	if !found {
		return clock.Event{}, clock.ErrEventNotFound
	}
	return r.joined(last), nil
}

func (r *EventRepository) ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]clock.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]clock.Event, 0)
	for _, e := range r.s.events {
		if containsID(userIDs, e.UserID) && !e.At.Before(from) && e.At.Before(to) {
			out = append(out, r.joined(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return eventLess(out[i], out[j]) })
	return out, nil
}

func (r *EventRepository) List(ctx context.Context, f clock.EventFilter) ([]clock.Event, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]clock.Event, 0)
	for _, e := range r.s.events {
		if e.CompanyID != f.CompanyID {
			continue
		}
		if f.UserIDs != nil && !containsID(f.UserIDs, e.UserID) {
			continue
		}
		if f.From != nil && e.At.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.At.Before(*f.To) {
			continue
		}
		out = append(out, r.joined(e))
	}
	sort.Slice(out, func(i, j int) bool { return eventLess(out[j], out[i]) })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *EventRepository) ListStale(ctx context.Context, before time.Time) ([]clock.StaleSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	latest := make(map[string]clock.Event)
	for _, e := range r.s.events {
		if cur, ok := latest[e.UserID]; !ok || eventLess(cur, e) {
			latest[e.UserID] = e
		}
	}
	out := make([]clock.StaleSession, 0)
	for _, e := range latest {
		if e.Type == "IN" && e.At.Before(before) {
			out = append(out, clock.StaleSession{CompanyID: e.CompanyID, UserID: e.UserID, InEventID: e.ID, Start: e.At})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// ---- absences ----

type AbsenceRepository struct{ s *Store }

func (s *Store) Absences() *AbsenceRepository { return &AbsenceRepository{s} }

func (r *AbsenceRepository) joined(a absence.Absence) absence.Absence {
	if u, ok := r.s.users[a.UserID]; ok {
		name := u.FullName
		a.UserName = &name
	}
	a.DecidedName = nil
	if a.DecidedBy != nil {
		if u, ok := r.s.users[*a.DecidedBy]; ok {
			name := u.FullName
			a.DecidedName = &name
		}
	}
	return a
}

func touches(a absence.Absence, from, to time.Time) bool {
	return dateKey(a.StartDate) <= dateKey(to) && dateKey(a.EndDate) >= dateKey(from)
}

func (r *AbsenceRepository) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = newID()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	r.s.absences[a.ID] = a
	return r.joined(a), nil
}

func (r *AbsenceRepository) GetByID(ctx context.Context, companyID, id string) (absence.Absence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.absences[id]
	if !ok || a.CompanyID != companyID {
		return absence.Absence{}, absence.ErrAbsenceNotFound
	}
	return r.joined(a), nil
}

func (r *AbsenceRepository) UpdateStatus(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.absences[a.ID]
	if !ok || old.CompanyID != a.CompanyID {
		return absence.Absence{}, absence.ErrAbsenceNotFound
	}
	old.Status = a.Status
	old.DecidedBy = a.DecidedBy
	old.DecidedAt = a.DecidedAt
	old.DecisionNote = a.DecisionNote
	old.UpdatedAt = r.s.now()
	r.s.absences[a.ID] = old
	return r.joined(old), nil
}

func (r *AbsenceRepository) LockUser(ctx context.Context, userID string) error {
	return nil
}

func (r *AbsenceRepository) HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.absences {
		if a.UserID != userID {
			continue
		}
		if a.Status != absence.StatusWaitingApproval && a.Status != absence.StatusApproved {
			continue
		}
		if touches(a, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AbsenceRepository) List(ctx context.Context, f absence.AbsenceFilter) ([]absence.Absence, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]absence.Absence, 0)
	for _, a := range r.s.absences {
		if a.CompanyID != f.CompanyID {
			continue
		}
		if f.UserIDs != nil && !containsID(f.UserIDs, a.UserID) {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.Type != nil && a.Type != *f.Type {
			continue
		}
		if f.From != nil && dateKey(a.EndDate) < dateKey(*f.From) {
			continue
		}
		if f.To != nil && dateKey(a.StartDate) > dateKey(*f.To) {
			continue
		}
		out = append(out, r.joined(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *AbsenceRepository) ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]absence.Absence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]absence.Absence, 0)
	for _, a := range r.s.absences {
		if containsID(userIDs, a.UserID) && touches(a, from, to) {
			out = append(out, r.joined(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *AbsenceRepository) CountPending(ctx context.Context, companyID string, userIDs []string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, a := range r.s.absences {
		if a.CompanyID != companyID || a.Status != absence.StatusWaitingApproval {
			continue
		}
		if userIDs != nil && !containsID(userIDs, a.UserID) {
			continue
		}
		n++
	}
	return n, nil
}
