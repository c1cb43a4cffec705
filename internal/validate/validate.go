// Package validate implements per-type validation and normalization of raw
// user input into lead field values.
//
// Validators are pure: no side effects, same input same output. A failed
// validation returns an error whose message is the exact re-prompt shown to
// the user.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
)

// Validator turns raw user text into a validated field value.
type Validator interface {
	Validate(raw string) (models.FieldValue, error)
}

// ForField returns the validator for a schema field. The dispatch is a closed
// switch over the field type: adding a type means adding a variant here.
func ForField(f schema.FieldSpec) Validator {
	switch f.Type {
	case models.FieldTypeText:
		if f.Key == models.FieldDocType {
			return docTypeValidator{}
		}
		return textValidator{}
	case models.FieldTypeChoice:
		return choiceValidator{field: f}
	case models.FieldTypeInteger:
		return integerValidator{zeroAllowed: false}
	case models.FieldTypeOptionalInteger:
		return integerValidator{zeroAllowed: true}
	case models.FieldTypePhone:
		return phoneValidator{}
	case models.FieldTypeEmail:
		return emailValidator{}
	case models.FieldTypePersonName:
		return personNameValidator{}
	default:
		return textValidator{}
	}
}

// Field validates raw input against the field identified by key.
func Field(key models.FieldKey, raw string) (models.FieldValue, error) {
	f, ok := schema.ByKey(key)
	if !ok {
		return models.FieldValue{}, errors.New("неизвестное поле")
	}
	return ForField(f).Validate(raw)
}

// Re-prompt texts. They are returned verbatim to the user on invalid input.
var (
	errEmptyText     = errors.New("Пожалуйста, напишите ответ текстом.")
	errForbiddenDoc  = errors.New("Мы не пересылаем паспорта, товары, деньги и ценности. Укажите другой тип документа.")
	errCountryChoice = errors.New("Допустимые страны: Украина, Россия, Беларусь.")
	errUrgencyChoice = errors.New("Укажите срочность: обычная (standard) или срочная (express).")
	errNotANumber    = errors.New("Нужно число. Например: 5 или «двадцать пять».")
	errZeroPages     = errors.New("Количество листов должно быть больше нуля.")
	errPhoneFormat   = errors.New("Телефон должен начинаться с +380, +7 или +375.")
	errEmailFormat   = errors.New("Похоже, это не email. Пример: name@example.com")
	errNameFormat    = errors.New("Имя должно содержать только буквы (минимум 2 символа).")
)

type textValidator struct{}

func (textValidator) Validate(raw string) (models.FieldValue, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.FieldValue{}, errEmptyText
	}
	return models.StringValue(s), nil
}

// forbiddenDocWords are document categories the service refuses to carry.
var forbiddenDocWords = []string{"паспорт", "passport", "товар", "деньги", "валю", "ценн"}

type docTypeValidator struct{}

func (docTypeValidator) Validate(raw string) (models.FieldValue, error) {
	v, err := textValidator{}.Validate(raw)
	if err != nil {
		return models.FieldValue{}, err
	}
	lower := strings.ToLower(v.Str)
	for _, w := range forbiddenDocWords {
		if strings.Contains(lower, w) {
			return models.FieldValue{}, errForbiddenDoc
		}
	}
	return v, nil
}

type choiceValidator struct {
	field schema.FieldSpec
}

func (cv choiceValidator) Validate(raw string) (models.FieldValue, error) {
	s := strings.TrimSpace(raw)
	switch cv.field.Key {
	case models.FieldFromCountry, models.FieldToCountry:
		if c, ok := schema.CanonicalCountry(s); ok {
			return models.StringValue(c), nil
		}
		return models.FieldValue{}, errCountryChoice
	case models.FieldUrgency:
		if u, ok := schema.CanonicalUrgency(s); ok {
			return models.StringValue(u), nil
		}
		return models.FieldValue{}, errUrgencyChoice
	}
	for _, c := range cv.field.Choices {
		if strings.EqualFold(s, c) {
			return models.StringValue(c), nil
		}
	}
	return models.FieldValue{}, errors.New("Выберите один из вариантов: " + strings.Join(cv.field.Choices, " / "))
}

var digitRunRE = regexp.MustCompile(`\d+`)

type integerValidator struct {
	// zeroAllowed marks the value optional: zero means "unknown" and is
	// accepted (weight), while required integers must be positive (pages).
	zeroAllowed bool
}

func (iv integerValidator) Validate(raw string) (models.FieldValue, error) {
	n, ok := ParseNumber(raw)
	if !ok {
		return models.FieldValue{}, errNotANumber
	}
	if n == 0 && !iv.zeroAllowed {
		return models.FieldValue{}, errZeroPages
	}
	return models.IntValue(n), nil
}

// phonePrefixes are the only accepted international prefixes. No further
// format checking is done beyond the prefix.
var phonePrefixes = []string{"+380", "+7", "+375"}

type phoneValidator struct{}

func (phoneValidator) Validate(raw string) (models.FieldValue, error) {
	s := strings.TrimSpace(raw)
	// Tolerate spacing and punctuation inside the number.
	compact := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	for _, p := range phonePrefixes {
		if strings.HasPrefix(compact, p) {
			return models.StringValue(compact), nil
		}
	}
	return models.FieldValue{}, errPhoneFormat
}

// emailRE is deliberately simple: single @, a dot somewhere in the domain.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type emailValidator struct{}

func (emailValidator) Validate(raw string) (models.FieldValue, error) {
	s := strings.TrimSpace(raw)
	if strings.Count(s, "@") != 1 || !emailRE.MatchString(s) {
		return models.FieldValue{}, errEmailFormat
	}
	return models.StringValue(s), nil
}

// personNameRE accepts Latin or Cyrillic letters plus space, hyphen and
// apostrophe.
var personNameRE = regexp.MustCompile(`^[\p{Latin}\p{Cyrillic}][\p{Latin}\p{Cyrillic}' -]*$`)

type personNameValidator struct{}

func (personNameValidator) Validate(raw string) (models.FieldValue, error) {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) < 2 || !personNameRE.MatchString(s) {
		return models.FieldValue{}, errNameFormat
	}
	return models.StringValue(s), nil
}
