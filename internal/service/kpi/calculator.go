package kpi

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

// DefaultLookback pulls in sessions that were already running when the
// period started.
const DefaultLookback = 24 * time.Hour

type CalculatorImpl struct {
	events   clock.EventRepository
	absences absence.AbsenceRepository
	policies company.PolicyProvider
	clk      utils.Clock
	lookback time.Duration
}

type CalculatorOption func(*CalculatorImpl)

// WithLookback sets how long before a period an IN event may lie and still
// open a session inside it. It should cover the longest a session can stay
// open before the stale-session job closes it.
func WithLookback(d time.Duration) CalculatorOption {
	return func(c *CalculatorImpl) {
		if d > 0 {
			c.lookback = d
		}
	}
}

func NewCalculator(events clock.EventRepository, absences absence.AbsenceRepository, policies company.PolicyProvider, clk utils.Clock, opts ...CalculatorOption) kpi.Calculator {
	c := &CalculatorImpl{events: events, absences: absences, policies: policies, clk: clk, lookback: DefaultLookback}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy implements kpi.Calculator.
func (c *CalculatorImpl) Policy(ctx context.Context, companyID string) (timeaccount.Policy, error) {
	return c.policies.PolicyFor(ctx, companyID)
}

// Summaries implements kpi.Calculator. The result keeps the order of users.
func (c *CalculatorImpl) Summaries(ctx context.Context, companyID string, users []user.User, period timeaccount.Period) ([]kpi.UserSummary, timeaccount.Policy, error) {
	policy, err := c.policies.PolicyFor(ctx, companyID)
	if err != nil {
		return nil, timeaccount.Policy{}, err
	}
	if len(users) == 0 {
		return []kpi.UserSummary{}, policy, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	from, to := period.Bounds(policy.Loc())

	var (
		events   []clock.Event
		absences []absence.Absence
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = c.events.ListByUsers(gctx, ids, from.Add(-c.lookback), to)
		if err != nil {
			return fmt.Errorf("failed to list clock events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		absences, err = c.absences.ListByUsers(gctx, ids, period.From, period.To)
		if err != nil {
			return fmt.Errorf("failed to list absences: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, timeaccount.Policy{}, err
	}

	eventsByUser := make(map[string][]timeaccount.Event, len(users))
	for _, e := range events {
		eventsByUser[e.UserID] = append(eventsByUser[e.UserID], e.ToTimeaccount())
	}
	absencesByUser := make(map[string][]timeaccount.Absence, len(users))
	for _, a := range absences {
		absencesByUser[a.UserID] = append(absencesByUser[a.UserID], a.ToTimeaccount())
	}

	now := c.clk.Now()
	out := make([]kpi.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, kpi.UserSummary{
			User:    u,
			Summary: timeaccount.Summarize(u.ID, eventsByUser[u.ID], absencesByUser[u.ID], period, policy, now),
		})
	}
	return out, policy, nil
}
