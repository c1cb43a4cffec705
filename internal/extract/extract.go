// Package extract turns free-form utterances into partial lead field maps.
//
// Extraction is two-tier: a fast local heuristic pass first, then a
// language-model pass when the heuristics find nothing and a backend is
// configured. Whatever the tier, every extracted value is re-validated
// through the validate package before it is returned, so the extractor never
// yields a value that would fail strict validation.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/islogix/docubridge/internal/genai"
	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
	"github.com/islogix/docubridge/internal/validate"
	"github.com/openai/openai-go"
)

// Extractor recognizes lead fields in arbitrary text. A nil client disables
// the model-assisted tier; the heuristic tier always runs.
type Extractor struct {
	client genai.ClientInterface
}

// New creates an extractor. client may be nil.
func New(client genai.ClientInterface) *Extractor {
	return &Extractor{client: client}
}

// Extract returns the fields recognized in text, or nil when nothing could be
// extracted. nil is distinct from an empty map: it means "no information".
// current is passed to the model tier so it can skip already-answered fields;
// it is never mutated.
func (e *Extractor) Extract(ctx context.Context, text string, current models.LeadData) models.LeadData {
	if found := Heuristic(text); found != nil {
		slog.Debug("Extractor heuristic pass matched", "fields", found.Keys())
		return found
	}
	if e.client == nil {
		return nil
	}
	found, err := e.modelPass(ctx, text, current)
	if err != nil {
		// Extraction failure means "no new information", never an error the
		// user sees.
		slog.Warn("Extractor model pass failed", "error", err)
		return nil
	}
	if found != nil {
		slog.Debug("Extractor model pass matched", "fields", found.Keys())
	}
	return found
}

// Word boundaries are spelled out with a trailing negated class because Go's
// \b is ASCII-only and does not terminate Cyrillic tokens.
var (
	weightRE = regexp.MustCompile(`(?i)(\d+)\s*(грамм[а-яё]*|гр|г|grams?|g)(?:[^a-zа-яё0-9]|$)`)
	pagesRE  = regexp.MustCompile(`(?i)(\d+)\s*(лист[а-яё]*|страниц[а-яё]*|стр|pages?|sheets?)(?:[^a-zа-яё0-9]|$)`)
	phoneRE  = regexp.MustCompile(`\+\d[\d \-()]{7,}\d`)
)

// Heuristic is the fast local pass: urgency synonyms, weight in grams, page
// counts and international phone numbers. When it finds a page count but no
// weight, the weight is derived at 6 g per sheet. Returns nil when nothing
// matched.
func Heuristic(text string) models.LeadData {
	found := models.NewLeadData()

	if m := pagesRE.FindStringSubmatch(text); m != nil {
		if n, ok := validate.ParseNumber(m[1]); ok && n > 0 {
			found.SetInt(models.FieldPagesA4, n)
		}
	}
	if m := weightRE.FindStringSubmatch(text); m != nil {
		if n, ok := validate.ParseNumber(m[1]); ok && n > 0 {
			found.SetInt(models.FieldWeightGrams, n)
		}
	}
	if u, ok := schema.CanonicalUrgency(text); ok {
		found.SetString(models.FieldUrgency, u)
	}
	if m := phoneRE.FindString(text); m != "" {
		if v, err := validate.Field(models.FieldPhone, m); err == nil {
			found[models.FieldPhone] = v
		}
	}

	if len(found) == 0 {
		return nil
	}
	found.DeriveWeight()
	return found
}

// extractionSystemPrompt instructs the model to answer with a single JSON
// object keyed by the schema field names, mirroring the rules the validators
// enforce. Values the model cannot determine stay empty.
const extractionSystemPrompt = `Ты извлекаешь данные заявки на пересылку документов из сообщения пользователя.
Верни ТОЛЬКО JSON с ключами:
{
  "doc_type": "",
  "from_country": "", "from_city": "",
  "to_country": "",   "to_city": "",
  "pages_a4": 0, "weight_grams": 0,
  "urgency": "",
  "name": "", "phone": "", "email": "",
  "best_time": ""
}
Правила:
- Страны: только Украина/Россия/Беларусь (иначе оставь пусто).
- urgency: только "standard" или "express".
- НЕ паспорта/товары/деньги/ценности — такие значения оставь пустыми.
- Телефон: только +380 / +7 / +375 — иначе пусто.
- Если pages_a4 > 0 и weight_grams == 0, оставь weight_grams равным 0.
- Не выдумывай значения, которых нет в сообщении.
Верни только JSON без текста вокруг.`

func (e *Extractor) modelPass(ctx context.Context, text string, current models.LeadData) (models.LeadData, error) {
	var state strings.Builder
	for _, f := range schema.Fields() {
		fmt.Fprintf(&state, "%s=%s\n", f.Key, current.Get(f.Key).Display())
	}
	userPrompt := fmt.Sprintf("UserMsg: %s\nCurrent state:\n%s", text, state.String())

	raw, err := e.client.GenerateWithMessages(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(extractionSystemPrompt),
		openai.UserMessage(userPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("extraction completion: %w", err)
	}

	obj := firstJSONObject(raw)
	if obj == "" {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction JSON: %w", err)
	}

	found := revalidate(parsed)
	if len(found) == 0 {
		return nil, nil
	}
	found.DeriveWeight()
	return found, nil
}

// revalidate passes every recognized key back through the strict validators,
// silently dropping anything invalid or empty.
func revalidate(parsed map[string]any) models.LeadData {
	found := models.NewLeadData()
	for _, f := range schema.Fields() {
		raw, ok := parsed[string(f.Key)]
		if !ok {
			continue
		}
		var text string
		switch val := raw.(type) {
		case string:
			text = strings.TrimSpace(val)
		case float64:
			if val <= 0 {
				continue
			}
			text = fmt.Sprintf("%.0f", val)
		default:
			continue
		}
		if text == "" {
			continue
		}
		v, err := validate.ForField(f).Validate(text)
		if err != nil {
			slog.Debug("Extractor dropped invalid model value", "field", f.Key, "reason", err)
			continue
		}
		found[f.Key] = v
	}
	return found
}

// firstJSONObject returns the first balanced {...} substring of s, tolerating
// prose around the object. String literals are skipped so braces inside
// values do not unbalance the scan.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
