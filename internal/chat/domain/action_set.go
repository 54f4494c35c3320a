package domain

// ActionSet is the structured side of a model turn: a reply plus
// optional instructions to create domain records. It is transient and
// never persisted as-is, only its effects are.
type ActionSet struct {
	Reply         string               `json:"reply"`
	Goal          *GoalAction          `json:"goal,omitempty"`
	Reminder      *ReminderAction      `json:"reminder,omitempty"`
	Journal       *JournalAction       `json:"journal,omitempty"`
	CalendarEvent *CalendarEventAction `json:"calendar_event,omitempty"`
	LifeAreas     []LifeAreaAction     `json:"life_areas,omitempty"`
}

// GoalAction instructs creation of a goal
type GoalAction struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// ReminderAction instructs creation of a reminder. RemindAt may be
// absent; the pipeline then derives it from the message text.
type ReminderAction struct {
	Message  string  `json:"message"`
	RemindAt *string `json:"remind_at,omitempty"`
}

// JournalAction instructs creation of a journal entry
type JournalAction struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`
}

// CalendarEventAction instructs creation of a calendar event.
// EndTime defaults to StartTime + 1h when absent.
type CalendarEventAction struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time,omitempty"`
}

// LifeAreaAction instructs creation of one life-area record
type LifeAreaAction struct {
	Name  string `json:"name"`
	Score *int   `json:"score,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// IsEmpty reports whether the action set carries no side effects
func (a *ActionSet) IsEmpty() bool {
	return a.Goal == nil && a.Reminder == nil && a.Journal == nil &&
		a.CalendarEvent == nil && len(a.LifeAreas) == 0
}
