// Package schema defines the fixed, ordered lead intake schema.
//
// The field order is the single source of truth for wizard progression and
// for "first missing field" semantics; every other component treats this
// package as a pure data contract.
package schema

import (
	"strings"

	"github.com/islogix/docubridge/internal/models"
)

// Canonical choice values shared by validators, the extractor and pricing.
const (
	CountryUkraine = "Украина"
	CountryRussia  = "Россия"
	CountryBelarus = "Беларусь"

	UrgencyStandard = "standard"
	UrgencyExpress  = "express"
)

// Countries is the allowed country set for both route endpoints.
var Countries = []string{CountryUkraine, CountryRussia, CountryBelarus}

// Urgencies is the allowed urgency set.
var Urgencies = []string{UrgencyStandard, UrgencyExpress}

// FieldSpec describes one required field: its key, value type, the question
// the wizard asks, the allowed choice set (for choice fields) and the aliases
// a correction command may use to refer to it.
type FieldSpec struct {
	Key     models.FieldKey
	Type    models.FieldType
	Prompt  string
	Choices []string
	Aliases []string
}

// fields is ordered; the order defines wizard progression.
var fields = []FieldSpec{
	{
		Key:     models.FieldDocType,
		Type:    models.FieldTypeText,
		Prompt:  "Какой тип документа? (например: доверенность, диплом, свидетельство)",
		Aliases: []string{"тип документа", "документ", "doc type", "document"},
	},
	{
		Key:     models.FieldFromCountry,
		Type:    models.FieldTypeChoice,
		Prompt:  "Из какой страны отправляем? (Украина/Россия/Беларусь)",
		Choices: Countries,
		Aliases: []string{"страну отправления", "страна отправления", "откуда", "origin country"},
	},
	{
		Key:     models.FieldFromCity,
		Type:    models.FieldTypeText,
		Prompt:  "Из какого города отправляем?",
		Aliases: []string{"город отправления", "origin city"},
	},
	{
		Key:     models.FieldToCountry,
		Type:    models.FieldTypeChoice,
		Prompt:  "В какую страну доставляем? (Украина/Россия/Беларусь)",
		Choices: Countries,
		Aliases: []string{"страну доставки", "страна доставки", "страну назначения", "куда", "destination country"},
	},
	{
		Key:     models.FieldToCity,
		Type:    models.FieldTypeText,
		Prompt:  "В какой город доставляем?",
		Aliases: []string{"город доставки", "город назначения", "destination city"},
	},
	{
		Key:     models.FieldPagesA4,
		Type:    models.FieldTypeInteger,
		Prompt:  "Сколько листов A4? (число)",
		Aliases: []string{"листов", "листы", "страницы", "pages"},
	},
	{
		Key:     models.FieldWeightGrams,
		Type:    models.FieldTypeOptionalInteger,
		Prompt:  "Если знаете точный вес в граммах — укажите, иначе напишите 0 и мы рассчитаем по листам.",
		Aliases: []string{"вес", "weight"},
	},
	{
		Key:     models.FieldUrgency,
		Type:    models.FieldTypeChoice,
		Prompt:  "Срочность: обычная (standard) или срочная (express)?",
		Choices: Urgencies,
		Aliases: []string{"срочность", "urgency"},
	},
	{
		Key:     models.FieldName,
		Type:    models.FieldTypePersonName,
		Prompt:  "Как к вам обращаться (имя/фамилия)?",
		Aliases: []string{"имя", "фамилию", "фамилия", "name"},
	},
	{
		Key:     models.FieldPhone,
		Type:    models.FieldTypePhone,
		Prompt:  "Контактный телефон (+380 / +7 / +375):",
		Aliases: []string{"телефон", "номер телефона", "phone"},
	},
	{
		Key:     models.FieldEmail,
		Type:    models.FieldTypeEmail,
		Prompt:  "Электронная почта:",
		Aliases: []string{"почту", "почта", "email", "емейл", "e-mail"},
	},
	{
		Key:     models.FieldBestTime,
		Type:    models.FieldTypeText,
		Prompt:  "Когда вам удобнее принимать звонок/сообщение?",
		Aliases: []string{"время связи", "время звонка", "best time"},
	},
}

// Fields returns the ordered schema. The returned slice must not be mutated.
func Fields() []FieldSpec { return fields }

// Len returns the number of schema fields.
func Len() int { return len(fields) }

// ByIndex returns the field at the given schema position.
func ByIndex(i int) FieldSpec { return fields[i] }

// ByKey looks a field up by its key.
func ByKey(key models.FieldKey) (FieldSpec, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// IndexOf returns the schema position of key, or -1 when unknown.
func IndexOf(key models.FieldKey) int {
	for i, f := range fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// MatchAlias finds the field a correction command refers to by scanning the
// utterance for field aliases. Longer aliases win so that "страну доставки"
// is not shadowed by "куда".
func MatchAlias(text string) (FieldSpec, bool) {
	lower := strings.ToLower(text)
	var best FieldSpec
	bestLen := 0
	for _, f := range fields {
		for _, alias := range f.Aliases {
			if len(alias) > bestLen && strings.Contains(lower, alias) {
				best = f
				bestLen = len(alias)
			}
		}
	}
	return best, bestLen > 0
}

// countryAliases maps lowercase spellings to the canonical country name.
var countryAliases = map[string]string{
	"украина":    CountryUkraine,
	"украины":    CountryUkraine,
	"украину":    CountryUkraine,
	"ukraine":    CountryUkraine,
	"ua":         CountryUkraine,
	"россия":     CountryRussia,
	"россии":     CountryRussia,
	"россию":     CountryRussia,
	"russia":     CountryRussia,
	"рф":         CountryRussia,
	"ru":         CountryRussia,
	"беларусь":   CountryBelarus,
	"беларуси":   CountryBelarus,
	"белоруссия": CountryBelarus,
	"белоруссии": CountryBelarus,
	"belarus":    CountryBelarus,
	"by":         CountryBelarus,
}

// CanonicalCountry normalizes a raw country spelling to its canonical form.
func CanonicalCountry(raw string) (string, bool) {
	c, ok := countryAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Urgency synonym word lists, shared by the choice validator and the
// heuristic extractor. Matching is case-insensitive substring.
var (
	ExpressWords  = []string{"express", "экспресс", "срочн", "срочная", "urgent", "asap", "быстр"}
	StandardWords = []string{"standard", "стандарт", "обычн", "обычная", "regular", "не срочно"}
)

// CanonicalUrgency maps a raw urgency utterance to its canonical value by
// scanning the synonym lists. Standard synonyms are checked first so that
// "не срочно" resolves to standard instead of matching the "срочн" stem.
func CanonicalUrgency(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", false
	}
	for _, w := range StandardWords {
		if strings.Contains(lower, w) {
			return UrgencyStandard, true
		}
	}
	for _, w := range ExpressWords {
		if strings.Contains(lower, w) {
			return UrgencyExpress, true
		}
	}
	return "", false
}
