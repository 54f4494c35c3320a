package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	authdomain "vida-backend/internal/auth/domain"
	authrepo "vida-backend/internal/auth/repository"
	chatrepo "vida-backend/internal/chat/repository"
	"vida-backend/internal/notification"
	recordsrepo "vida-backend/internal/records/repository"
	reminderrepo "vida-backend/internal/reminder/repository"
	reminderusecase "vida-backend/internal/reminder/usecase"

	"golang.org/x/sync/semaphore"
)

// NotificationDispatcher is the scheduler's view of the dispatcher
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, user *authdomain.User, n notification.Notification) notification.Outcome
}

// LeadInferrer classifies reminder text into lead minutes
type LeadInferrer interface {
	InferLeadMinutes(ctx context.Context, text string, eventTime, now time.Time) int
}

const (
	dueTickInterval        = 1 * time.Minute
	leadTickInterval       = 5 * time.Minute
	engagementTickInterval = 30 * time.Minute

	// maxLeadMinutes bounds how far ahead the lead tick scans; no
	// vocabulary entry exceeds two hours
	maxLeadMinutes = 120

	// maxConcurrentDispatch bounds parallel dispatches within one tick
	maxConcurrentDispatch = 4

	wakeUpInactivity = 24 * time.Hour
)

// Scheduler runs the periodic notification ticks. Each tick owns its
// own due-item query and dispatch loop; there is no ordering guarantee
// between ticks.
type Scheduler struct {
	reminderRepo reminderrepo.ReminderRepository
	goalRepo     recordsrepo.GoalRepository
	eventRepo    recordsrepo.CalendarEventRepository
	userRepo     authrepo.UserRepository
	msgRepo      chatrepo.MessageRepository
	dispatcher   NotificationDispatcher
	inferrer     LeadInferrer

	now        func() time.Time
	inferDelay time.Duration
	stopChan   chan struct{}
	wg         sync.WaitGroup
	sem        *semaphore.Weighted
}

// NewScheduler creates a new Scheduler
func NewScheduler(
	reminderRepo reminderrepo.ReminderRepository,
	goalRepo recordsrepo.GoalRepository,
	eventRepo recordsrepo.CalendarEventRepository,
	userRepo authrepo.UserRepository,
	msgRepo chatrepo.MessageRepository,
	dispatcher NotificationDispatcher,
	inferrer LeadInferrer,
) *Scheduler {
	return &Scheduler{
		reminderRepo: reminderRepo,
		goalRepo:     goalRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		msgRepo:      msgRepo,
		dispatcher:   dispatcher,
		inferrer:     inferrer,
		now:          time.Now,
		inferDelay:   reminderusecase.InferDelay,
		stopChan:     make(chan struct{}),
		sem:          semaphore.NewWeighted(maxConcurrentDispatch),
	}
}

// SetClock overrides the time source (used by tests)
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SetInferDelay overrides the inter-call delay (used by tests)
func (s *Scheduler) SetInferDelay(d time.Duration) {
	s.inferDelay = d
}

// Start launches the three ticks, each on its own cadence
func (s *Scheduler) Start() {
	log.Println("[Scheduler] Starting ticks: due (1m), lead (5m), engagement (30m)")
	s.startTick("due", dueTickInterval, s.runDueTick)
	s.startTick("lead", leadTickInterval, s.runLeadTick)
	s.startTick("engagement", engagementTickInterval, s.runEngagementTick)
}

// Stop gracefully stops all ticks
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	log.Println("[Scheduler] Stopped")
}

func (s *Scheduler) startTick(name string, interval time.Duration, run func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Run immediately on start
		run()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				run()
			case <-s.stopChan:
				log.Printf("[Scheduler] %s tick stopped", name)
				return
			}
		}
	}()
}

// runDueTick sends the plain due-time notice for reminders, goals and
// calendar events whose target time has passed and whose email notice
// has not been attempted yet.
func (s *Scheduler) runDueTick() {
	now := s.now()
	ctx := context.Background()

	reminders, err := s.reminderRepo.FindDueUnnotified(now)
	if err != nil {
		log.Printf("[Scheduler] Due tick: failed to scan reminders: %v", err)
	} else {
		s.dispatchBounded(ctx, len(reminders), func(i int) {
			r := reminders[i]
			if s.dispatchToUser(ctx, r.UserID, notification.Notification{
				Title: "⏰ Lembrete",
				Body:  r.Message,
				Data:  map[string]string{"type": "reminder_due", "reminder_id": r.ID},
			}) {
				if err := s.reminderRepo.MarkEmailSent(r.ID); err != nil {
					log.Printf("[Scheduler] Failed to mark reminder %s notified: %v", r.ID, err)
				}
			}
		})
	}

	goals, err := s.goalRepo.FindDueUnnotified(now)
	if err != nil {
		log.Printf("[Scheduler] Due tick: failed to scan goals: %v", err)
	} else {
		s.dispatchBounded(ctx, len(goals), func(i int) {
			g := goals[i]
			if s.dispatchToUser(ctx, g.UserID, notification.Notification{
				Title: "🎯 Meta vencendo",
				Body:  g.Title,
				Data:  map[string]string{"type": "goal_due", "goal_id": g.ID},
			}) {
				if err := s.goalRepo.MarkEmailSent(g.ID); err != nil {
					log.Printf("[Scheduler] Failed to mark goal %s notified: %v", g.ID, err)
				}
			}
		})
	}

	events, err := s.eventRepo.FindDueUnnotified(now)
	if err != nil {
		log.Printf("[Scheduler] Due tick: failed to scan events: %v", err)
	} else {
		s.dispatchBounded(ctx, len(events), func(i int) {
			e := events[i]
			if s.dispatchToUser(ctx, e.UserID, notification.Notification{
				Title: "📅 Evento começando",
				Body:  e.Title,
				Data:  map[string]string{"type": "event_due", "event_id": e.ID},
			}) {
				if err := s.eventRepo.MarkEmailSent(e.ID); err != nil {
					log.Printf("[Scheduler] Failed to mark event %s notified: %v", e.ID, err)
				}
			}
		})
	}
}

// runLeadTick sends the anticipatory notice for reminders whose
// inferred send time has arrived and that were not dispatched yet.
// Items run sequentially because each classification is a model call
// separated by a fixed rate-limit delay.
func (s *Scheduler) runLeadTick() {
	now := s.now()
	ctx := context.Background()

	reminders, err := s.reminderRepo.FindUpcomingUnsent(now.Add(maxLeadMinutes * time.Minute))
	if err != nil {
		log.Printf("[Scheduler] Lead tick: failed to scan reminders: %v", err)
		return
	}

	for i, r := range reminders {
		if i > 0 && !s.sleep(s.inferDelay) {
			return
		}

		lead := s.inferrer.InferLeadMinutes(ctx, r.Message, r.RemindAt, now)
		sendTime := reminderusecase.SendTime(r.RemindAt, lead)
		if s.now().Before(sendTime) {
			continue
		}

		if s.dispatchToUser(ctx, r.UserID, notification.Notification{
			Title: "⏰ Não esquece",
			Body:  fmt.Sprintf("%s (às %s)", r.Message, r.RemindAt.Format("15:04")),
			Data:  map[string]string{"type": "reminder_lead", "reminder_id": r.ID},
		}) {
			if err := s.reminderRepo.MarkSent(r.ID); err != nil {
				log.Printf("[Scheduler] Failed to mark reminder %s sent: %v", r.ID, err)
			}
		}
	}
}

// runEngagementTick nudges users who have not written anything today
// and were not woken in the last 24 hours.
func (s *Scheduler) runEngagementTick() {
	now := s.now()
	ctx := context.Background()

	users, err := s.userRepo.FindNotifiable()
	if err != nil {
		log.Printf("[Scheduler] Engagement tick: failed to scan users: %v", err)
		return
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, user := range users {
		if user.LastWakeUpAt != nil && now.Sub(*user.LastWakeUpAt) < wakeUpInactivity {
			continue
		}

		count, err := s.msgRepo.CountByUserSince(user.ID, dayStart)
		if err != nil {
			log.Printf("[Scheduler] Engagement tick: failed to count messages for user %s: %v", user.ID, err)
			continue
		}
		if count > 0 {
			continue
		}

		outcome := s.dispatcher.Dispatch(ctx, user, notification.Notification{
			Title: "👋 Bom te ver",
			Body:  "Como está seu dia? Me conta o que você quer organizar hoje.",
			Data:  map[string]string{"type": "wake_up"},
		})
		if outcome.Success() {
			if err := s.userRepo.MarkWakeUpSent(user.ID, now); err != nil {
				log.Printf("[Scheduler] Failed to stamp wake-up for user %s: %v", user.ID, err)
			}
		}
	}
}

// dispatchBounded fans n items out with bounded parallelism. Each
// item's flag update runs inside its own goroutine, strictly after its
// own dispatch attempt.
func (s *Scheduler) dispatchBounded(ctx context.Context, n int, item func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer s.sem.Release(1)
			item(i)
		}(i)
	}
	wg.Wait()
}

// dispatchToUser resolves the user and dispatches. Returns true when
// the dispatch attempt completed with the system-of-record write
// succeeding, i.e. the caller may flip the sent flag.
func (s *Scheduler) dispatchToUser(ctx context.Context, userID string, n notification.Notification) bool {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("[Scheduler] Failed to load user %s: %v", userID, err)
		return false
	}
	if user == nil {
		log.Printf("[Scheduler] User %s no longer exists, skipping", userID)
		return false
	}

	outcome := s.dispatcher.Dispatch(ctx, user, n)
	return outcome.Success()
}

// sleep waits for d unless the scheduler is stopping. Returns false on
// stop.
func (s *Scheduler) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.stopChan:
		return false
	}
}
