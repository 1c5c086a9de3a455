package model

import (
	"slices"
	"time"
)

// Категории пожертвований.
const (
	CategoryClothing   = "Ropa"
	CategoryFood       = "Alimentos"
	CategoryFurniture  = "Muebles"
	CategoryToys       = "Juguetes"
	CategoryAppliances = "Electrodomesticos"
)

// Categories — допустимые категории, проверяются на границе транспорта.
var Categories = []string{
	CategoryClothing,
	CategoryFood,
	CategoryFurniture,
	CategoryToys,
	CategoryAppliances,
}

// IsKnownCategory сообщает, входит ли категория в перечисление.
func IsKnownCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Location — город обязателен, адрес опционален.
type Location struct {
	City    string  `gorm:"not null"`
	Address *string
}

// Donation — серверная модель объявления о пожертвовании.
type Donation struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	OwnerEmail string `gorm:"not null;index"` // владелец, задаётся один раз при создании

	DonorName   string
	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Category    string `gorm:"not null"`
	Condition   string `gorm:"not null"`

	// ExpirationDate в формате YYYY-MM-DD, имеет смысл только для Alimentos
	ExpirationDate *string

	Location Location `gorm:"embedded;embeddedPrefix:location_"`

	ImageURL *string

	// без default-тега: иначе gorm подставит true вместо явного false при Create
	Available bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"index"`
}

// DonationPatch — частичное обновление. nil-поле означает «не менять».
// Email владельца намеренно отсутствует.
type DonationPatch struct {
	DonorName      *string
	Title          *string
	Description    *string
	Category       *string
	Condition      *string
	ExpirationDate *string
	City           *string
	Address        *string
	ImageURL       *string
}

// IsEmpty true, если ни одно поле не задано.
func (p DonationPatch) IsEmpty() bool {
	return p.DonorName == nil && p.Title == nil && p.Description == nil &&
		p.Category == nil && p.Condition == nil && p.ExpirationDate == nil &&
		p.City == nil && p.Address == nil && p.ImageURL == nil
}

// DonationView — публичная проекция для ответов API.
type DonationView struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Condition      string  `json:"condition"`
	ExpirationDate *string `json:"expiration_date"`
	Available      bool    `json:"available"`
	City           string  `json:"city"`
	Address        *string `json:"address"`
	ImageURL       *string `json:"image_url"`
	CreatedAt      string  `json:"created_at"`
}

// View строит публичную проекцию; время сериализуется только здесь.
func (d Donation) View() DonationView {
	return DonationView{
		ID:             d.ID,
		Email:          d.OwnerEmail,
		Name:           d.DonorName,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		Condition:      d.Condition,
		ExpirationDate: d.ExpirationDate,
		Available:      d.Available,
		City:           d.Location.City,
		Address:        d.Location.Address,
		ImageURL:       d.ImageURL,
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Views — проекция списка.
func Views(ds []Donation) []DonationView {
	out := make([]DonationView, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.View())
	}
	return out
}
