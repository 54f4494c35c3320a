package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelOutputStrictJSON(t *testing.T) {
	raw := `{"reply":"Anotado!","reminder":{"message":"ligar pro médico","remind_at":"2026-03-10T15:00:00Z"}}`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	assert.Empty(t, out.Freeform)
	assert.Equal(t, "Anotado!", out.Structured.Reply)
	require.NotNil(t, out.Structured.Reminder)
	assert.Equal(t, "ligar pro médico", out.Structured.Reminder.Message)
}

func TestParseModelOutputFencedJSON(t *testing.T) {
	raw := "Claro, aqui está:\n```json\n{\"reply\":\"Feito\",\"goal\":{\"title\":\"Correr 5km\"}}\n```"

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	assert.Equal(t, "Feito", out.Structured.Reply)
	require.NotNil(t, out.Structured.Goal)
	assert.Equal(t, "Correr 5km", out.Structured.Goal.Title)
}

func TestParseModelOutputTrailingComma(t *testing.T) {
	raw := `{"reply":"Ok","journal":{"content":"dia bom",},}`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	require.NotNil(t, out.Structured.Journal)
	assert.Equal(t, "dia bom", out.Structured.Journal.Content)
}

func TestParseModelOutputCommaBraceInsideString(t *testing.T) {
	// A literal ",}" in a value must survive the trailing-comma pass
	raw := `{"reply":"use a sequência ,} no final","journal":{"content":"fim ,] de lista",},}`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	assert.Equal(t, "use a sequência ,} no final", out.Structured.Reply)
	require.NotNil(t, out.Structured.Journal)
	assert.Equal(t, "fim ,] de lista", out.Structured.Journal.Content)
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1,}`, `{"a":1}`},
		{`[1,2, ]`, `[1,2 ]`},
		{"{\"a\":1,\n}", "{\"a\":1\n}"},
		{`{"a":",}"}`, `{"a":",}"}`},
		{`{"a":"\",}"}`, `{"a":"\",}"}`},
		{`{"a":1,,}`, `{"a":1,}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripTrailingCommas(tt.in), "input %q", tt.in)
	}
}

func TestParseModelOutputRawNewlineInString(t *testing.T) {
	raw := "{\"reply\":\"linha um\nlinha dois\"}"

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	assert.Equal(t, "linha um\nlinha dois", out.Structured.Reply)
}

func TestParseModelOutputTruncatedCompletion(t *testing.T) {
	// Token limit hit mid-object: no closing braces, string cut open
	raw := `{"reply":"Vou anotar isso","reminder":{"message":"comprar pão`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	assert.Equal(t, "Vou anotar isso", out.Structured.Reply)
	require.NotNil(t, out.Structured.Reminder)
	assert.Equal(t, "comprar pão", out.Structured.Reminder.Message)
}

func TestParseModelOutputDanglingColon(t *testing.T) {
	raw := `{"reply":"Ok","goal":{"title":"Ler mais","due_date":`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	require.NotNil(t, out.Structured.Goal)
	assert.Equal(t, "Ler mais", out.Structured.Goal.Title)
	assert.Nil(t, out.Structured.Goal.DueDate)
}

func TestParseModelOutputProseAroundObject(t *testing.T) {
	raw := `Aqui está o resultado: {"reply":"Pronto"} Espero ter ajudado!`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	assert.Equal(t, "Pronto", out.Structured.Reply)
}

func TestParseModelOutputFreeformFallback(t *testing.T) {
	raw := "Desculpa, não entendi o que você quis dizer."

	out := ParseModelOutput(raw)

	assert.Nil(t, out.Structured)
	assert.Equal(t, raw, out.Freeform)
}

func TestParseModelOutputFreeformStripsFences(t *testing.T) {
	raw := "```\nsó um texto qualquer sem estrutura\n```"

	out := ParseModelOutput(raw)

	assert.Nil(t, out.Structured)
	assert.Equal(t, "só um texto qualquer sem estrutura", out.Freeform)
}

func TestParseModelOutputNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"}",
		"{{{{",
		`{"reply"`,
		"```json",
		`[1,2,3`,
		"\x00\x01garbage",
	}
	for _, raw := range inputs {
		assert.NotPanics(t, func() { ParseModelOutput(raw) }, "input %q", raw)
	}
}

func TestRepairJSONBalancesNestedStructures(t *testing.T) {
	raw := `{"reply":"Ok","life_areas":[{"name":"saúde","score":7},{"name":"carreira"`

	out := ParseModelOutput(raw)

	require.NotNil(t, out.Structured)
	require.Len(t, out.Structured.LifeAreas, 2)
	assert.Equal(t, "saúde", out.Structured.LifeAreas[0].Name)
	require.NotNil(t, out.Structured.LifeAreas[0].Score)
	assert.Equal(t, 7, *out.Structured.LifeAreas[0].Score)
	assert.Equal(t, "carreira", out.Structured.LifeAreas[1].Name)
}
