package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/metrics"
	"constanciaAPI/internal/notification"
	"constanciaAPI/internal/plan"
	notificationTypes "constanciaAPI/internal/types/notification"
	"constanciaAPI/internal/types/profile"
)

type PlanService struct {
	store    Store
	catalog  *plan.Catalog
	notifier Notifier
	clock
}

func NewPlanService(store Store, catalog *plan.Catalog, notifier Notifier, defaultLoc *time.Location) *PlanService {
	if catalog == nil {
		catalog = plan.DefaultCatalog()
	}
	return &PlanService{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		clock:    newClock(defaultLoc),
	}
}

func (s *PlanService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *PlanService) Catalog() *plan.Catalog {
	return s.catalog
}

func (s *PlanService) loadProgress(ctx context.Context, userID uuid.UUID) (*profile.Profile, plan.Progress, error) {
	if userID == uuid.Nil {
		return nil, plan.Progress{}, ErrNotAuthenticated
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, plan.Progress{}, readFailure("get profile", err)
	}
	if p.CurrentPlanID == nil || p.PlanStartDate == nil {
		return p, plan.GetProgress(s.catalog, p.Assignment, nil), nil
	}

	checkins, err := s.store.GetCheckinsSince(ctx, userID, *p.PlanStartDate)
	if err != nil {
		return nil, plan.Progress{}, readFailure("get check-ins since plan start", err)
	}
	return p, plan.GetProgress(s.catalog, p.Assignment, checkins), nil
}

func (s *PlanService) GetPlanProgress(ctx context.Context, userID uuid.UUID) (*plan.Progress, error) {
	_, progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// SelectPlan starts planID today, discarding progress on any earlier plan.
func (s *PlanService) SelectPlan(ctx context.Context, userID uuid.UUID, planID string) (*plan.Progress, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if _, ok := s.catalog.Get(planID); !ok {
		return nil, ErrUnknownPlan
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, readFailure("get profile", err)
	}

	today := s.todayIn(p.Timezone, s.now())
	if err := s.store.UpdateProfile(ctx, userID, profile.Update{CurrentPlanID: &planID, PlanStartDate: &today}); err != nil {
		return nil, writeFailure("select plan", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "plan": planID}).Info("plan selected")

	return s.GetPlanProgress(ctx, userID)
}

// AdvanceToNextPlan moves a user who completed the current plan to its
// successor, starting today, or tomorrow when today's check-in already
// counted toward the finished plan. It reports false without writing when the plan
// is not complete or has no successor.
func (s *PlanService) AdvanceToNextPlan(ctx context.Context, userID uuid.UUID) (*plan.Plan, bool, error) {
	return s.CheckAndAdvancePlan(ctx, userID, s.now())
}

// CheckAndAdvancePlan is the advance evaluated at a given instant; the workout
// flow runs it with the completion time, so the new plan starts the local day
// after the completing check-in with zero days passed.
func (s *PlanService) CheckAndAdvancePlan(ctx context.Context, userID uuid.UUID, at time.Time) (*plan.Plan, bool, error) {
	p, progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	next, ok := plan.CanAdvance(s.catalog, progress)
	if !ok {
		return nil, false, nil
	}

	start := s.todayIn(p.Timezone, at)
	trainedToday, err := s.store.GetCheckinOn(ctx, userID, start)
	if err != nil {
		return nil, false, readFailure("get today check-in", err)
	}
	if trainedToday {
		// today already counted toward the finished plan
		if start, err = start.AddDays(1); err != nil {
			return nil, false, err
		}
	}

	nextID := next.ID
	if err := s.store.UpdateProfile(ctx, userID, profile.Update{CurrentPlanID: &nextID, PlanStartDate: &start}); err != nil {
		return nil, false, writeFailure("advance plan", err)
	}

	metrics.PlanAdvances.WithLabelValues(next.ID).Inc()
	log.WithFields(log.Fields{
		"user_id": userID,
		"from":    progress.Plan.ID,
		"to":      next.ID,
	}).Info("plan advanced")

	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, notification.PlanAdvancedTitle,
			notification.PlanAdvancedBody(next.Title), notificationTypes.TagPlanAdvanced)
	}
	return &next, true, nil
}

// ScalePrescriptions applies the active plan's load multiplier to each value.
// Bare counts such as "12" come back trimmed.
func (s *PlanService) ScalePrescriptions(ctx context.Context, userID uuid.UUID, values []string) ([]string, float64, error) {
	_, progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	scaled := make([]string, len(values))
	for i, v := range values {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			scaled[i] = plan.ApplyLoadMultiplierInt(n, progress.LoadMultiplier)
			continue
		}
		scaled[i] = plan.ApplyLoadMultiplier(v, progress.LoadMultiplier)
	}
	return scaled, progress.LoadMultiplier, nil
}
