package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	chatdomain "vida-backend/internal/chat/domain"
	chatrepo "vida-backend/internal/chat/repository"
	recordsdomain "vida-backend/internal/records/domain"
	recordsrepo "vida-backend/internal/records/repository"
	reminderdomain "vida-backend/internal/reminder/domain"
	reminderrepo "vida-backend/internal/reminder/repository"
	"vida-backend/pkg/ai"
	"vida-backend/pkg/timeparse"
)

// PipelineService turns a free-text user turn into a persisted reply
// plus the side effects the model instructed.
type PipelineService struct {
	convRepo     chatrepo.ConversationRepository
	msgRepo      chatrepo.MessageRepository
	reminderRepo reminderrepo.ReminderRepository
	goalRepo     recordsrepo.GoalRepository
	journalRepo  recordsrepo.JournalRepository
	eventRepo    recordsrepo.CalendarEventRepository
	lifeAreaRepo recordsrepo.LifeAreaRepository
	aiClient     ai.Client
	now          func() time.Time
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(
	convRepo chatrepo.ConversationRepository,
	msgRepo chatrepo.MessageRepository,
	reminderRepo reminderrepo.ReminderRepository,
	goalRepo recordsrepo.GoalRepository,
	journalRepo recordsrepo.JournalRepository,
	eventRepo recordsrepo.CalendarEventRepository,
	lifeAreaRepo recordsrepo.LifeAreaRepository,
	aiClient ai.Client,
) *PipelineService {
	return &PipelineService{
		convRepo:     convRepo,
		msgRepo:      msgRepo,
		reminderRepo: reminderRepo,
		goalRepo:     goalRepo,
		journalRepo:  journalRepo,
		eventRepo:    eventRepo,
		lifeAreaRepo: lifeAreaRepo,
		aiClient:     aiClient,
		now:          time.Now,
	}
}

// SetClock overrides the time source (used by tests)
func (s *PipelineService) SetClock(now func() time.Time) {
	s.now = now
}

// ProcessMessage runs one turn of the pipeline and returns the reply
// text. Inference being unavailable is the only error surfaced;
// malformed model output and side-effect failures are absorbed.
func (s *PipelineService) ProcessMessage(ctx context.Context, userID, text string, channel Channel) (string, error) {
	conv, err := s.resolveCanonicalConversation(userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve conversation: %w", err)
	}

	userMsg := &chatdomain.ChatMessage{
		ConversationID: conv.ID,
		Sender:         chatdomain.SenderUser,
		Content:        text,
	}
	if err := s.msgRepo.Create(userMsg); err != nil {
		return "", fmt.Errorf("failed to persist message: %w", err)
	}

	messages, err := s.buildPromptMessages(conv.ID)
	if err != nil {
		// History is an enhancement; degrade to the current turn only
		log.Printf("[Pipeline] Failed to load history for conversation %s: %v", conv.ID, err)
		messages = []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt(s.now())},
			{Role: ai.RoleUser, Content: text},
		}
	}

	raw, err := s.aiClient.Complete(ctx, messages, maxTokensFor(channel), completionTemperature)
	if err != nil {
		return "", fmt.Errorf("inference failed: %w", err)
	}

	output := ParseModelOutput(raw)

	reply := output.Freeform
	if output.Structured != nil {
		reply = output.Structured.Reply
	}

	botMsg := &chatdomain.ChatMessage{
		ConversationID: conv.ID,
		Sender:         chatdomain.SenderBot,
		Content:        reply, // empty string when the model omitted it, never null
	}
	if err := s.msgRepo.Create(botMsg); err != nil {
		return "", fmt.Errorf("failed to persist reply: %w", err)
	}

	if output.Structured != nil {
		s.applyActions(userID, output.Structured)
	}

	return reply, nil
}

// resolveCanonicalConversation returns the user's most recent
// conversation, creating one when none exists.
func (s *PipelineService) resolveCanonicalConversation(userID string) (*chatdomain.Conversation, error) {
	conv, err := s.convRepo.FindCanonicalByUser(userID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	conv = &chatdomain.Conversation{
		UserID: userID,
		Title:  "Conversa principal",
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *PipelineService) buildPromptMessages(conversationID string) ([]ai.Message, error) {
	history, err := s.msgRepo.FindRecentByConversation(conversationID, historyWindow)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: systemPrompt(s.now())})
	for _, m := range history {
		role := ai.RoleUser
		if m.Sender == chatdomain.SenderBot {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: m.Content})
	}
	return messages, nil
}

// applyActions executes each action independently. One failing create
// must not prevent the others.
func (s *PipelineService) applyActions(userID string, actions *chatdomain.ActionSet) {
	if actions.Reminder != nil {
		if err := s.createReminder(userID, actions.Reminder); err != nil {
			log.Printf("[Pipeline] Failed to create reminder for user %s: %v", userID, err)
		}
	}

	if actions.Goal != nil {
		if err := s.createGoal(userID, actions.Goal); err != nil {
			log.Printf("[Pipeline] Failed to create goal for user %s: %v", userID, err)
		}
	}

	if actions.Journal != nil {
		journal := &recordsdomain.Journal{
			UserID:  userID,
			Title:   actions.Journal.Title,
			Content: actions.Journal.Content,
			Mood:    actions.Journal.Mood,
		}
		if err := s.journalRepo.Create(journal); err != nil {
			log.Printf("[Pipeline] Failed to create journal for user %s: %v", userID, err)
		}
	}

	if actions.CalendarEvent != nil {
		if err := s.createCalendarEvent(userID, actions.CalendarEvent); err != nil {
			log.Printf("[Pipeline] Failed to create calendar event for user %s: %v", userID, err)
		}
	}

	for _, area := range actions.LifeAreas {
		lifeArea := &recordsdomain.LifeArea{
			UserID: userID,
			Name:   area.Name,
			Score:  area.Score,
			Notes:  area.Notes,
		}
		if err := s.lifeAreaRepo.Create(lifeArea); err != nil {
			log.Printf("[Pipeline] Failed to create life area %q for user %s: %v", area.Name, userID, err)
		}
	}
}

func (s *PipelineService) createReminder(userID string, action *chatdomain.ReminderAction) error {
	now := s.now()

	var remindAt *time.Time
	if action.RemindAt != nil {
		remindAt = parseTimestamp(*action.RemindAt)
	}
	if remindAt == nil {
		// Derive the target time from the message text
		remindAt = timeparse.ParseDateTime(action.Message, now)
	}
	if remindAt == nil {
		fallback := now.Add(time.Hour)
		remindAt = &fallback
		log.Printf("[Pipeline] No time found in reminder %q, defaulting to +1h", action.Message)
	}

	return s.reminderRepo.Create(&reminderdomain.Reminder{
		UserID:   userID,
		Message:  action.Message,
		RemindAt: *remindAt,
	})
}

func (s *PipelineService) createGoal(userID string, action *chatdomain.GoalAction) error {
	goal := &recordsdomain.Goal{
		UserID:      userID,
		Title:       action.Title,
		Description: action.Description,
	}
	if action.DueDate != nil {
		goal.DueDate = parseTimestamp(*action.DueDate)
	}
	return s.goalRepo.Create(goal)
}

func (s *PipelineService) createCalendarEvent(userID string, action *chatdomain.CalendarEventAction) error {
	start := parseTimestamp(action.StartTime)
	if start == nil {
		return fmt.Errorf("event %q has no parseable start time", action.Title)
	}

	end := start.Add(time.Hour)
	if action.EndTime != nil {
		if parsed := parseTimestamp(*action.EndTime); parsed != nil {
			end = *parsed
		}
	}

	return s.eventRepo.Create(&recordsdomain.CalendarEvent{
		UserID:      userID,
		Title:       action.Title,
		Description: action.Description,
		StartTime:   *start,
		EndTime:     end,
	})
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(value string) *time.Time {
	for _, format := range timestampFormats {
		if t, err := time.ParseInLocation(format, value, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
