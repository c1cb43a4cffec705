package flow

import (
	"context"
	"strings"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
	"github.com/islogix/docubridge/internal/validate"
)

// correctionTriggers are the verbs and markers that signal the user wants to
// change an earlier answer. A correction requires a trigger AND a field
// alias in the same utterance, so ordinary answers like "не срочно" are not
// mistaken for one.
var correctionTriggers = []string{
	"исправ", "измени", "поменя", "замени", "перепиш",
	"неправильн", "не тот", "не та", "ошиб",
	"change", "correct", "wrong", "fix",
}

// correctionStopTokens are filler words dropped from a correction utterance
// before the remainder is re-validated as the new field value.
var correctionStopTokens = map[string]bool{
	"нет": true, "не": true, "тот": true, "та": true, "давайте": true,
	"давай": true, "пожалуйста": true, "это": true, "будет": true,
	"вот": true, "на": true, "в": true, "из": true, "с": true, "а": true,
	"и": true, "же": true, "самом": true, "деле": true,
	"please": true, "actually": true, "to": true, "the": true,
}

// detectCorrection reports whether text is a correction and which field it
// targets.
func detectCorrection(text string) (schema.FieldSpec, bool) {
	lower := strings.ToLower(text)
	triggered := false
	for _, t := range correctionTriggers {
		if strings.Contains(lower, t) {
			triggered = true
			break
		}
	}
	if !triggered {
		return schema.FieldSpec{}, false
	}
	return schema.MatchAlias(text)
}

// handleCorrection overwrites the targeted field when the utterance carries a
// valid new value. A bare correction ("поменяем телефон") only repositions
// the cursor at that field and asks again; nothing is cleared.
func (c *Controller) handleCorrection(ctx context.Context, st *models.ConversationState, f schema.FieldSpec, text string) error {
	v, ok := c.correctionValue(ctx, st, f, text)
	if !ok {
		st.Status = models.StatusCollecting
		st.ExpectedIndex = schema.IndexOf(f.Key)
		return c.respond(ctx, st, text, "Хорошо, давайте исправим.\n"+f.Prompt, f.Choices)
	}

	if f.Key == models.FieldPagesA4 {
		refreshDerivedWeight(st.Lead)
	}
	st.Lead[f.Key] = v
	st.Lead.DeriveWeight()
	st.Status = models.StatusCollecting
	ack := "Обновил: " + v.Display() + ". "
	return c.advance(ctx, st, text, ack)
}

// correctionValue extracts the replacement value from a correction utterance:
// the opportunistic extractor first, then strict validation of the text with
// trigger words, aliases and fillers stripped.
func (c *Controller) correctionValue(ctx context.Context, st *models.ConversationState, f schema.FieldSpec, text string) (models.FieldValue, bool) {
	if found := c.extractor.Extract(ctx, text, st.Lead); found != nil {
		if v, ok := found[f.Key]; ok && v.Filled(f.Type) {
			return v, true
		}
	}

	remainder := stripCorrectionWords(text, f)
	if remainder == "" {
		return models.FieldValue{}, false
	}
	v, err := validate.ForField(f).Validate(remainder)
	if err != nil {
		return models.FieldValue{}, false
	}
	return v, true
}

// stripCorrectionWords removes trigger words, the field's alias words and
// filler tokens, leaving the candidate replacement value with its original
// casing.
func stripCorrectionWords(text string, f schema.FieldSpec) string {
	aliasWords := make(map[string]bool)
	for _, a := range f.Aliases {
		for _, w := range strings.Fields(a) {
			aliasWords[w] = true
		}
	}

	var kept []string
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".,!?:;\"«»")
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)
		if correctionStopTokens[lower] || aliasWords[lower] || hasTriggerStem(lower) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// hasTriggerStem reports whether a token starts with one of the correction
// trigger stems ("поменяем" matches "поменя").
func hasTriggerStem(tok string) bool {
	for _, t := range correctionTriggers {
		if strings.HasPrefix(tok, t) {
			return true
		}
	}
	return false
}

// refreshDerivedWeight drops the stored weight when it was derived from the
// old page count, so DeriveWeight recomputes it from the corrected one.
// An explicitly provided weight is left alone.
func refreshDerivedWeight(data models.LeadData) {
	oldPages := data.GetInt(models.FieldPagesA4)
	weight := data.GetInt(models.FieldWeightGrams)
	if oldPages > 0 && weight == oldPages*6 {
		delete(data, models.FieldWeightGrams)
	}
}
