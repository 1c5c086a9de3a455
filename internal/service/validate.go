package service

import (
	"DonationHub/internal/model"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Ключи ошибок совпадают с именами полей в API.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldCategory       = "category"
	FieldCondition      = "condition"
	FieldEmail          = "email"
	FieldExpirationDate = "expiration_date"
	FieldLocation       = "location"
	FieldCity           = "city"
	FieldAddress        = "address"
)

// месяц и день допускаются без ведущего нуля: 2025-3-5
const expirationLayout = "2006-1-2"

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	foodConditions    = []string{"Perecedero", "No perecedero"}
	generalConditions = []string{"Usado", "En perfecto estado", "Usado una vez", "Nuevo", "No aplica"}
)

// ValidationErrors — поле -> сообщение. Пустая карта означает валидный ввод.
type ValidationErrors map[string]string

// DonationInput — нормализованные данные для создания пожертвования.
type DonationInput struct {
	OwnerEmail     string
	DonorName      string
	Title          string
	Description    string
	Category       string
	Condition      string
	ExpirationDate *string
	Location       *model.Location
	Available      *bool
}

// ValidateDonation проверяет ввод относительно текущей даты UTC.
func ValidateDonation(in DonationInput) ValidationErrors {
	return ValidateDonationAt(in, time.Now())
}

// ValidateDonationAt собирает все нарушения, без раннего выхода.
func ValidateDonationAt(in DonationInput, now time.Time) ValidationErrors {
	errs := ValidationErrors{}

	required := []struct {
		field, value, msg string
	}{
		{FieldTitle, in.Title, "Este campo es obligatorio"},
		{FieldDescription, in.Description, "Este campo es obligatorio"},
		{FieldCategory, in.Category, "Debe seleccionar una categoría"},
		{FieldCondition, in.Condition, "Debe especificar la condición"},
		{FieldEmail, in.OwnerEmail, "El email es obligatorio"},
	}
	for _, r := range required {
		if r.value == "" {
			errs[r.field] = r.msg
		}
	}

	if in.OwnerEmail != "" && !emailRe.MatchString(in.OwnerEmail) {
		errs[FieldEmail] = "Formato de email inválido"
	}

	if in.Category != "" && in.Condition != "" {
		if in.Category == model.CategoryFood {
			if !slices.Contains(foodConditions, in.Condition) {
				errs[FieldCondition] = "Debe ser 'Perecedero' o 'No perecedero' para alimentos"
			}
		} else if !slices.Contains(generalConditions, in.Condition) {
			// неизвестная категория проверяется по общему набору
			errs[FieldCondition] = "Condición no válida para esta categoría"
		}
	}

	if in.Category == model.CategoryFood && in.ExpirationDate != nil {
		if msg := checkExpiration(*in.ExpirationDate, now); msg != "" {
			errs[FieldExpirationDate] = msg
		}
	}

	if in.Location == nil {
		errs[FieldLocation] = "Debe incluir ciudad (y opcionalmente dirección)"
	} else {
		if in.Location.City == "" {
			errs[FieldCity] = "La ciudad es obligatoria"
		}
		if a := in.Location.Address; a != nil && *a != "" && strings.TrimSpace(*a) == "" {
			errs[FieldAddress] = "La dirección no puede estar vacía si se incluye"
		}
	}

	return errs
}

// checkExpiration: сегодняшняя дата допустима, вчерашняя — нет.
func checkExpiration(value string, now time.Time) string {
	exp, err := time.Parse(expirationLayout, value)
	if err != nil {
		return "Formato inválido. Debe ser YYYY-MM-DD"
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if exp.Before(today) {
		return "La fecha de expiración no puede ser en el pasado"
	}
	return ""
}
