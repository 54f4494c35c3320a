package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"vida-backend/pkg/ai"
)

// InferDelay is the fixed pause between classification calls inside a
// batch scan, to respect upstream rate limits. It blocks only that
// scan, never other ticks or interactive requests.
const InferDelay = 30 * time.Second

// defaultLeadMinutes is returned when neither the model nor the
// keyword fallback recognizes the event.
const defaultLeadMinutes = 30

// vocabulary is the fixed interval set the classifier must pick from,
// ordered so the regex prefers longer matches.
var vocabulary = []struct {
	label   string
	minutes int
}{
	{"2 horas", 120},
	{"1 hora", 60},
	{"45 minutos", 45},
	{"30 minutos", 30},
	{"20 minutos", 20},
	{"15 minutos", 15},
	{"10 minutos", 10},
	{"5 minutos", 5},
}

var vocabularyPattern = regexp.MustCompile(`(?i)\b(2\s*horas|1\s*hora|45\s*minutos|30\s*minutos|20\s*minutos|15\s*minutos|10\s*minutos|5\s*minutos)\b`)

// IntervalService infers how long before a reminder's target time the
// notification should fire.
type IntervalService struct {
	aiClient ai.Client
}

// NewIntervalService creates a new IntervalService. A nil client means
// the deterministic fallback is always used.
func NewIntervalService(aiClient ai.Client) *IntervalService {
	return &IntervalService{aiClient: aiClient}
}

// InferLeadMinutes classifies the reminder text into a lead time in
// minutes. Always returns a positive value.
func (s *IntervalService) InferLeadMinutes(ctx context.Context, text string, eventTime, now time.Time) int {
	if s.aiClient != nil {
		reply, err := s.aiClient.Complete(ctx, []ai.Message{
			{Role: ai.RoleSystem, Content: classificationPrompt()},
			{Role: ai.RoleUser, Content: fmt.Sprintf("Evento: %q\nHorário do evento: %s\nAgora: %s",
				text, eventTime.Format("15:04"), now.Format("15:04"))},
		}, 50, 0.1)
		if err != nil {
			log.Printf("[Interval] Classification failed, using fallback: %v", err)
		} else if minutes := extractVocabulary(reply); minutes > 0 {
			return minutes
		}
	}

	return FallbackLeadMinutes(text)
}

// SendTime computes when the lead-time notification fires
func SendTime(eventTime time.Time, leadMinutes int) time.Time {
	return eventTime.Add(-time.Duration(leadMinutes) * time.Minute)
}

func classificationPrompt() string {
	return `Você classifica eventos para decidir com quanta antecedência avisar o usuário. Responda com EXATAMENTE um destes intervalos e nada mais: "2 horas", "1 hora", "45 minutos", "30 minutos", "20 minutos", "15 minutos", "10 minutos", "5 minutos".

Critérios:
- Exige deslocamento (aeroporto, viagem, consulta longe): "2 horas"
- Formal, exige preparação (reunião, entrevista, apresentação): "1 hora"
- Tarefa simples e rápida (ligar, mandar mensagem, comprar): "30 minutos"
- Urgente, de última hora: "10 minutos"
- Iminente, acontece em menos de 30 minutos: "5 minutos"`
}

// extractVocabulary returns the minutes of the first vocabulary match
// in the model reply, or 0 when none matches.
func extractVocabulary(reply string) int {
	match := vocabularyPattern.FindString(reply)
	if match == "" {
		return 0
	}
	normalized := strings.Join(strings.Fields(strings.ToLower(match)), " ")
	for _, v := range vocabulary {
		if v.label == normalized {
			return v.minutes
		}
	}
	return 0
}

// Keyword tables for the deterministic fallback, one per semantic
// category.
var (
	travelKeywords = []string{"aeroporto", "voo", "viagem", "viajar", "embarque", "buscar", "levar", "rodoviária", "rodoviaria"}
	formalKeywords = []string{"reunião", "reuniao", "entrevista", "apresentação", "apresentacao", "negócios", "negocios", "médico", "medico", "consulta", "dentista", "prova", "exame", "audiência", "audiencia"}
	urgentKeywords = []string{"urgente", "agora", "imediato", "imediatamente", "última hora", "ultima hora"}
	soonKeywords   = []string{"daqui a pouco", "já já", "ja ja", "em instantes", "logo mais"}
)

// FallbackLeadMinutes maps reminder text onto a lead time without the
// model. Always positive, 30 when nothing matches.
func FallbackLeadMinutes(text string) int {
	lower := strings.ToLower(text)

	for _, kw := range travelKeywords {
		if strings.Contains(lower, kw) {
			return 120
		}
	}
	for _, kw := range formalKeywords {
		if strings.Contains(lower, kw) {
			return 60
		}
	}
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return 10
		}
	}
	for _, kw := range soonKeywords {
		if strings.Contains(lower, kw) {
			return 5
		}
	}
	return defaultLeadMinutes
}
