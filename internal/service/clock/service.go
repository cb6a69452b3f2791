package clock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

// lookback is how far before a range events are fetched so that sessions
// already running at its start are paired.
const lookback = 24 * time.Hour

const autoCloseNote = "auto-closed: session left open"

type ClockServiceImpl struct {
	clock.EventRepository
	absences  absence.AbsenceRepository
	tx        database.Transactor
	policies  company.PolicyProvider
	access    team.AccessControl
	publisher live.Publisher
	clk       utils.Clock
}

func NewClockService(
	tx database.Transactor,
	eventRepository clock.EventRepository,
	absenceRepository absence.AbsenceRepository,
	policies company.PolicyProvider,
	access team.AccessControl,
	publisher live.Publisher,
	clk utils.Clock,
) clock.ClockService {
	return &ClockServiceImpl{
		EventRepository: eventRepository,
		absences:        absenceRepository,
		tx:              tx,
		policies:        policies,
		access:          access,
		publisher:       publisher,
		clk:             clk,
	}
}

// punch records an IN or OUT for the caller, keeping events alternating.
func (s *ClockServiceImpl) punch(ctx context.Context, eventType timeaccount.EventType, req clock.ClockRequest) (clock.EventResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return clock.EventResponse{}, err
	}
	if err := actor.Require(user.PermissionClockOwn); err != nil {
		return clock.EventResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return clock.EventResponse{}, err
	}

	now := s.clk.Now()
	var created clock.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.EventRepository.LockUser(ctx, actor.UserID); err != nil {
			return err
		}

		open := false
		last, err := s.EventRepository.Last(ctx, actor.UserID)
		switch {
		case err == nil:
			open = last.Type == timeaccount.EventIn
		case !errors.Is(err, clock.ErrEventNotFound):
			return fmt.Errorf("failed to get last clock event: %w", err)
		}

		if eventType == timeaccount.EventIn && open {
			return clock.ErrAlreadyClockedIn
		}
		if eventType == timeaccount.EventOut && !open {
			return clock.ErrNotClockedIn
		}

		created, err = s.EventRepository.Create(ctx, clock.Event{
			CompanyID: actor.CompanyID,
			UserID:    actor.UserID,
			Type:      eventType,
			At:        now,
			Source:    clock.SourceSelf,
			Note:      req.Note,
			CreatedBy: &actor.UserID,
		})
		return err
	})
	if err != nil {
		return clock.EventResponse{}, err
	}

	slog.InfoContext(ctx, "Clock event recorded", "type", eventType, "event_id", created.ID)
	s.publishPresence(ctx, created)
	return clock.ToEventResponse(created), nil
}

// ClockIn implements clock.ClockService.
func (s *ClockServiceImpl) ClockIn(ctx context.Context, req clock.ClockRequest) (clock.EventResponse, error) {
	return s.punch(ctx, timeaccount.EventIn, req)
}

// ClockOut implements clock.ClockService.
func (s *ClockServiceImpl) ClockOut(ctx context.Context, req clock.ClockRequest) (clock.EventResponse, error) {
	return s.punch(ctx, timeaccount.EventOut, req)
}

// Status implements clock.ClockService.
func (s *ClockServiceImpl) Status(ctx context.Context) (clock.StatusResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return clock.StatusResponse{}, err
	}

	policy, err := s.policies.PolicyFor(ctx, actor.CompanyID)
	if err != nil {
		return clock.StatusResponse{}, err
	}
	return s.todayStatus(ctx, actor.UserID, policy, s.clk.Now())
}

// todayStatus derives the presence of one user on the local date of now.
func (s *ClockServiceImpl) todayStatus(ctx context.Context, userID string, policy timeaccount.Policy, now time.Time) (clock.StatusResponse, error) {
	loc := policy.Loc()
	today := timeaccount.DateOf(now, loc)
	next := today.AddDate(0, 0, 1)

	events, err := s.EventRepository.ListByUsers(ctx, []string{userID}, today.Add(-lookback), next)
	if err != nil {
		return clock.StatusResponse{}, fmt.Errorf("failed to list clock events: %w", err)
	}

	resp := clock.StatusResponse{UserID: userID}

	last, err := s.EventRepository.Last(ctx, userID)
	switch {
	case err == nil:
		lastResp := clock.ToEventResponse(last)
		resp.LastEvent = &lastResp
		if last.Type == timeaccount.EventIn && !containsEvent(events, last.ID) {
			events = append([]clock.Event{last}, events...)
		}
	case !errors.Is(err, clock.ErrEventNotFound):
		return clock.StatusResponse{}, fmt.Errorf("failed to get last clock event: %w", err)
	}

	absences, err := s.absences.ListByUsers(ctx, []string{userID}, today, today)
	if err != nil {
		return clock.StatusResponse{}, fmt.Errorf("failed to list absences: %w", err)
	}

	sessions, _ := timeaccount.PairSessions(clock.ToTimeaccountEvents(events))
	if open, ok := timeaccount.OpenSession(sessions, userID); ok {
		resp.ClockedIn = true
		start := open.Start.In(loc).Format(time.RFC3339)
		resp.SessionStart = &start
	}

	days := timeaccount.DailyTotals(sessions, absence.ToTimeaccountAbsences(absences), timeaccount.Period{From: today, To: today}, policy, now)
	if len(days) == 1 {
		resp.Status = string(days[0].Status)
		resp.TodayWorkedMinutes = days[0].WorkedMinutes
		resp.LateMinutes = days[0].LateMinutes
	}
	resp.TodayWorkedHours = timeaccount.FormatMinutes(resp.TodayWorkedMinutes)
	return resp, nil
}

func containsEvent(events []clock.Event, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *ClockServiceImpl) publishPresence(ctx context.Context, e clock.Event) {
	if s.publisher == nil {
		return
	}

	policy, err := s.policies.PolicyFor(ctx, e.CompanyID)
	if err != nil {
		slog.WarnContext(ctx, "Live: failed to load policy", "company_id", e.CompanyID, "error", err)
		return
	}
	status, err := s.todayStatus(ctx, e.UserID, policy, s.clk.Now())
	if err != nil {
		slog.WarnContext(ctx, "Live: failed to compute status", "user_id", e.UserID, "error", err)
		return
	}

	data := live.PresenceChangedData{
		UserID: e.UserID,
		Status: status.Status,
		At:     e.At.Format(time.RFC3339),
	}
	if e.UserName != nil {
		data.UserName = *e.UserName
	}
	s.publisher.Publish(ctx, live.Event{
		Name:      live.EventPresenceChanged,
		CompanyID: e.CompanyID,
		UserID:    e.UserID,
		Data:      data,
	})
}

func (s *ClockServiceImpl) list(ctx context.Context, filter clock.EventFilter, req clock.ListEventsRequest) (clock.ListEventsResponse, error) {
	events, total, err := s.EventRepository.List(ctx, filter)
	if err != nil {
		return clock.ListEventsResponse{}, fmt.Errorf("failed to list clock events: %w", err)
	}

	totalPages, showing := utils.Paginate(total, req.Page, req.Limit)
	resp := clock.ListEventsResponse{
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Events:     make([]clock.EventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, clock.ToEventResponse(e))
	}
	return resp, nil
}

// rangeFilter converts the request dates into instants in the company
// location.
func (s *ClockServiceImpl) rangeFilter(ctx context.Context, companyID string, req clock.ListEventsRequest) (clock.EventFilter, error) {
	filter := clock.EventFilter{CompanyID: companyID, Page: req.Page, Limit: req.Limit}

	from, to := req.Dates()
	if from == nil && to == nil {
		return filter, nil
	}
	policy, err := s.policies.PolicyFor(ctx, companyID)
	if err != nil {
		return clock.EventFilter{}, err
	}
	if from != nil {
		start, _ := timeaccount.Period{From: *from, To: *from}.Bounds(policy.Loc())
		filter.From = &start
	}
	if to != nil {
		_, end := timeaccount.Period{From: *to, To: *to}.Bounds(policy.Loc())
		filter.To = &end
	}
	return filter, nil
}

// ListMine implements clock.ClockService.
func (s *ClockServiceImpl) ListMine(ctx context.Context, req clock.ListEventsRequest) (clock.ListEventsResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return clock.ListEventsResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return clock.ListEventsResponse{}, err
	}

	filter, err := s.rangeFilter(ctx, actor.CompanyID, req)
	if err != nil {
		return clock.ListEventsResponse{}, err
	}
	filter.UserIDs = []string{actor.UserID}
	return s.list(ctx, filter, req)
}

// List implements clock.ClockService.
func (s *ClockServiceImpl) List(ctx context.Context, req clock.ListEventsRequest) (clock.ListEventsResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return clock.ListEventsResponse{}, err
	}
	if err := actor.Require(user.PermissionClockViewTeam); err != nil {
		return clock.ListEventsResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return clock.ListEventsResponse{}, err
	}

	filter, err := s.rangeFilter(ctx, actor.CompanyID, req)
	if err != nil {
		return clock.ListEventsResponse{}, err
	}

	switch {
	case req.UserID != nil:
		if _, err := s.access.AuthorizeUser(ctx, actor, *req.UserID); err != nil {
			return clock.ListEventsResponse{}, err
		}
		filter.UserIDs = []string{*req.UserID}
	case req.TeamID != nil || !actor.IsAdmin():
		teamID := ""
		if req.TeamID != nil {
			teamID = *req.TeamID
		}
		users, err := s.access.ScopeUsers(ctx, actor, teamID)
		if err != nil {
			return clock.ListEventsResponse{}, err
		}
		filter.UserIDs = userIDs(users)
	}

	return s.list(ctx, filter, req)
}

func userIDs(users []user.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// CreateManual implements clock.ClockService.
func (s *ClockServiceImpl) CreateManual(ctx context.Context, req clock.ManualEventRequest) (clock.EventResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return clock.EventResponse{}, err
	}
	if err := actor.Require(user.PermissionClockManage); err != nil {
		return clock.EventResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return clock.EventResponse{}, err
	}
	if req.Time().After(s.clk.Now()) {
		return clock.EventResponse{}, clock.ErrEventInFuture
	}
	if _, err := s.access.AuthorizeUser(ctx, actor, req.UserID); err != nil {
		return clock.EventResponse{}, err
	}

	var created clock.Event
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.EventRepository.LockUser(ctx, req.UserID); err != nil {
			return err
		}
		created, err = s.EventRepository.Create(ctx, clock.Event{
			CompanyID: actor.CompanyID,
			UserID:    req.UserID,
			Type:      timeaccount.EventType(req.Type),
			At:        req.Time(),
			Source:    clock.SourceManual,
			Note:      req.Note,
			CreatedBy: &actor.UserID,
		})
		return err
	})
	if err != nil {
		return clock.EventResponse{}, err
	}

	slog.InfoContext(ctx, "Manual clock event recorded", "event_id", created.ID, "target_user_id", req.UserID)
	s.publishPresence(ctx, created)
	return clock.ToEventResponse(created), nil
}

// Delete implements clock.ClockService.
func (s *ClockServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := actor.Require(user.PermissionClockManage); err != nil {
		return err
	}

	e, err := s.EventRepository.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if _, err := s.access.AuthorizeUser(ctx, actor, e.UserID); err != nil {
		return err
	}
	if err := s.EventRepository.Delete(ctx, actor.CompanyID, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Clock event deleted", "event_id", id, "target_user_id", e.UserID)
	s.publishPresence(ctx, e)
	return nil
}

// CloseStaleSessions implements clock.ClockService. The OUT is placed one
// policy workday after the IN, or at now if that is earlier.
func (s *ClockServiceImpl) CloseStaleSessions(ctx context.Context, maxOpen time.Duration) (int, error) {
	now := s.clk.Now()
	stale, err := s.EventRepository.ListStale(ctx, now.Add(-maxOpen))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	policies := make(map[string]timeaccount.Policy)
	closed := 0
	var errs []error

	for _, session := range stale {
		policy, ok := policies[session.CompanyID]
		if !ok {
			policy, err = s.policies.PolicyFor(ctx, session.CompanyID)
			if err != nil {
				errs = append(errs, fmt.Errorf("company %s: %w", session.CompanyID, err))
				continue
			}
			policies[session.CompanyID] = policy
		}

		end := session.Start.Add(time.Duration(policy.DailyMinutes) * time.Minute)
		if end.After(now) {
			end = now
		}

		var created clock.Event
		skipped := false
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.EventRepository.LockUser(ctx, session.UserID); err != nil {
				return err
			}
			last, err := s.EventRepository.Last(ctx, session.UserID)
			if err != nil {
				return err
			}
			if last.ID != session.InEventID {
				skipped = true
				return nil
			}

			note := autoCloseNote
			created, err = s.EventRepository.Create(ctx, clock.Event{
				CompanyID: session.CompanyID,
				UserID:    session.UserID,
				Type:      timeaccount.EventOut,
				At:        end,
				Source:    clock.SourceAuto,
				Note:      &note,
			})
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", session.UserID, err))
			continue
		}
		if skipped {
			continue
		}

		closed++
		slog.InfoContext(ctx, "Stale session closed", "user_id", session.UserID, "started_at", session.Start, "closed_at", end)
		s.publishPresence(ctx, created)
	}

	return closed, errors.Join(errs...)
}
