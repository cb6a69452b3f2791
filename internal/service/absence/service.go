package absence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

type AbsenceServiceImpl struct {
	absence.AbsenceRepository
	tx        database.Transactor
	policies  company.PolicyProvider
	access    team.AccessControl
	publisher live.Publisher
	clk       utils.Clock
}

func NewAbsenceService(
	tx database.Transactor,
	absenceRepository absence.AbsenceRepository,
	policies company.PolicyProvider,
	access team.AccessControl,
	publisher live.Publisher,
	clk utils.Clock,
) absence.AbsenceService {
	return &AbsenceServiceImpl{
		AbsenceRepository: absenceRepository,
		tx:                tx,
		policies:          policies,
		access:            access,
		publisher:         publisher,
		clk:               clk,
	}
}

// Create implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Create(ctx context.Context, req absence.CreateAbsenceRequest) (absence.AbsenceResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if err := actor.Require(user.PermissionAbsenceOwn); err != nil {
		return absence.AbsenceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return absence.AbsenceResponse{}, err
	}

	start, end := req.Dates()
	var created absence.Absence
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.AbsenceRepository.LockUser(ctx, actor.UserID); err != nil {
			return err
		}
		overlap, err := s.AbsenceRepository.HasOverlap(ctx, actor.UserID, start, end)
		if err != nil {
			return fmt.Errorf("failed to check overlapping absences: %w", err)
		}
		if overlap {
			return absence.ErrOverlappingAbsence
		}

		created, err = s.AbsenceRepository.Create(ctx, absence.Absence{
			CompanyID: actor.CompanyID,
			UserID:    actor.UserID,
			Type:      absence.Type(req.Type),
			Status:    absence.StatusWaitingApproval,
			StartDate: start,
			EndDate:   end,
			HalfDay:   req.HalfDay,
			Reason:    req.Reason,
		})
		return err
	})
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	slog.InfoContext(ctx, "Absence requested", "absence_id", created.ID, "type", created.Type)
	s.publish(ctx, live.EventAbsenceRequested, created)
	return absence.ToResponse(created), nil
}

// decide moves a pending absence to approved or rejected. Only the
// manager of the requester's team or an admin may decide, and never on
// their own request.
func (s *AbsenceServiceImpl) decide(ctx context.Context, id string, status absence.Status, note *string) (absence.AbsenceResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if err := actor.Require(user.PermissionAbsenceApprove); err != nil {
		return absence.AbsenceResponse{}, err
	}

	var updated absence.Absence
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		a, err := s.AbsenceRepository.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if a.UserID == actor.UserID {
			return absence.ErrCannotDecideOwn
		}
		if _, err := s.access.AuthorizeUser(ctx, actor, a.UserID); err != nil {
			return err
		}
		if a.Status != absence.StatusWaitingApproval {
			return absence.ErrAbsenceAlreadyProcessed
		}

		decidedAt := s.clk.Now()
		a.Status = status
		a.DecidedBy = &actor.UserID
		a.DecidedAt = &decidedAt
		a.DecisionNote = note

		updated, err = s.AbsenceRepository.UpdateStatus(ctx, a)
		return err
	})
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	slog.InfoContext(ctx, "Absence decided", "absence_id", updated.ID, "status", updated.Status)
	s.publish(ctx, live.EventAbsenceDecided, updated)
	return absence.ToResponse(updated), nil
}

// Approve implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Approve(ctx context.Context, id string, req absence.DecisionRequest) (absence.AbsenceResponse, error) {
	return s.decide(ctx, id, absence.StatusApproved, req.Note)
}

// Reject implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Reject(ctx context.Context, id string, req absence.DecisionRequest) (absence.AbsenceResponse, error) {
	if err := req.ValidateRejection(); err != nil {
		return absence.AbsenceResponse{}, err
	}
	return s.decide(ctx, id, absence.StatusRejected, req.Note)
}

// Cancel implements absence.AbsenceService. Only the requester can cancel.
func (s *AbsenceServiceImpl) Cancel(ctx context.Context, id string) (absence.AbsenceResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	policy, err := s.policies.PolicyFor(ctx, actor.CompanyID)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	today := timeaccount.DateOf(s.clk.Now(), policy.Loc())

	var updated absence.Absence
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		a, err := s.AbsenceRepository.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if a.UserID != actor.UserID {
			return team.ErrForbiddenUser
		}
		if !a.Cancellable(today) {
			return absence.ErrCannotCancel
		}

		a.Status = absence.StatusCancelled
		updated, err = s.AbsenceRepository.UpdateStatus(ctx, a)
		return err
	})
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	slog.InfoContext(ctx, "Absence cancelled", "absence_id", updated.ID)
	return absence.ToResponse(updated), nil
}

// Get implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Get(ctx context.Context, id string) (absence.AbsenceResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}

	a, err := s.AbsenceRepository.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return absence.AbsenceResponse{}, err
	}
	if _, err := s.access.AuthorizeUser(ctx, actor, a.UserID); err != nil {
		return absence.AbsenceResponse{}, err
	}
	return absence.ToResponse(a), nil
}

func (s *AbsenceServiceImpl) list(ctx context.Context, filter absence.AbsenceFilter, req absence.ListAbsenceRequest) (absence.ListAbsenceResponse, error) {
	absences, total, err := s.AbsenceRepository.List(ctx, filter)
	if err != nil {
		return absence.ListAbsenceResponse{}, fmt.Errorf("failed to list absences: %w", err)
	}

	totalPages, showing := utils.Paginate(total, req.Page, req.Limit)
	resp := absence.ListAbsenceResponse{
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Absences:   make([]absence.AbsenceResponse, 0, len(absences)),
	}
	for _, a := range absences {
		resp.Absences = append(resp.Absences, absence.ToResponse(a))
	}
	return resp, nil
}

// ListMine implements absence.AbsenceService.
func (s *AbsenceServiceImpl) ListMine(ctx context.Context, req absence.ListAbsenceRequest) (absence.ListAbsenceResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	return s.list(ctx, req.Filter(actor.CompanyID, []string{actor.UserID}), req)
}

// List implements absence.AbsenceService. Managers see their teams, admins
// the whole company.
func (s *AbsenceServiceImpl) List(ctx context.Context, req absence.ListAbsenceRequest) (absence.ListAbsenceResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	if err := actor.Require(user.PermissionAbsenceViewTeam); err != nil {
		return absence.ListAbsenceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return absence.ListAbsenceResponse{}, err
	}

	var userIDs []string
	switch {
	case req.UserID != nil:
		if _, err := s.access.AuthorizeUser(ctx, actor, *req.UserID); err != nil {
			return absence.ListAbsenceResponse{}, err
		}
		userIDs = []string{*req.UserID}
	case req.TeamID != nil || !actor.IsAdmin():
		teamID := ""
		if req.TeamID != nil {
			teamID = *req.TeamID
		}
		users, err := s.access.ScopeUsers(ctx, actor, teamID)
		if err != nil {
			return absence.ListAbsenceResponse{}, err
		}
		userIDs = make([]string, 0, len(users))
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
	}

	return s.list(ctx, req.Filter(actor.CompanyID, userIDs), req)
}

func (s *AbsenceServiceImpl) publish(ctx context.Context, name live.EventName, a absence.Absence) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, live.Event{
		Name:      name,
		CompanyID: a.CompanyID,
		UserID:    a.UserID,
		Data: live.AbsenceData{
			AbsenceID: a.ID,
			UserID:    a.UserID,
			Type:      string(a.Type),
			Status:    string(a.Status),
			StartDate: a.StartDate.Format("2006-01-02"),
			EndDate:   a.EndDate.Format("2006-01-02"),
		},
	})
}
