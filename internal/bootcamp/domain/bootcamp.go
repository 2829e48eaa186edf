package domain

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedValidation "github.com/davicafu/devcamper/shared/platform/validation"
)

const DefaultPhoto = "no-photo.jpg"

// Careers admitidas en un bootcamp.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

func init() {
	sharedValidation.RegisterRule("career", func(fl validator.FieldLevel) bool {
		return IsCareer(fl.Field().String())
	})
}

func IsCareer(s string) bool {
	for _, c := range Careers {
		if c == s {
			return true
		}
	}
	return false
}

// Location es un punto GeoJSON con la dirección normalizada por el geocoder.
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"` // [lng, lat]
	FormattedAddress string    `json:"formattedAddress"`
	Street           string    `json:"street"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
}

// NewPoint construye un Location GeoJSON a partir de latitud/longitud.
func NewPoint(lat, lng float64) *Location {
	return &Location{Type: "Point", Coordinates: []float64{lng, lat}}
}

type Bootcamp struct {
	ID            uuid.UUID `json:"_id"`
	User          uuid.UUID `json:"user"`
	Name          string    `json:"name" validate:"required,max=50"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description" validate:"required,max=500"`
	Website       string    `json:"website,omitempty" validate:"omitempty,httpurl"`
	Phone         string    `json:"phone,omitempty" validate:"max=20"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Address       string    `json:"address" validate:"required"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers" validate:"required,min=1,dive,career"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (b *Bootcamp) PartitionKey() string {
	return b.ID.String()
}

// BootcampInput son los campos que puede fijar el cliente al crear un bootcamp.
type BootcampInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Website       string   `json:"website"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Address       string   `json:"address"`
	Careers       []string `json:"careers"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// BootcampPatch es una actualización parcial: solo se aplican los campos presentes.
type BootcampPatch struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Website       *string   `json:"website"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Address       *string   `json:"address"`
	Careers       *[]string `json:"careers"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGi      *bool     `json:"acceptGi"`
}

// NewBootcamp crea el agregado con slug, foto por defecto y fecha de alta.
func NewBootcamp(owner uuid.UUID, in BootcampInput) (*Bootcamp, error) {
	b := &Bootcamp{
		ID:            uuid.New(),
		User:          owner,
		Name:          in.Name,
		Slug:          sharedValidation.Slugify(in.Name),
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		Careers:       in.Careers,
		Photo:         DefaultPhoto,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGi:      in.AcceptGi,
		CreatedAt:     time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bootcamp) Validate() error {
	return sharedValidation.Struct(b)
}

// Apply aplica el patch y valida el resultado. Devuelve true si cambió la dirección,
// en cuyo caso hay que volver a geocodificar.
func (b *Bootcamp) Apply(p BootcampPatch) (bool, error) {
	addressChanged := false
	if p.Name != nil && *p.Name != b.Name {
		b.Name = *p.Name
		b.Slug = sharedValidation.Slugify(b.Name)
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Website != nil {
		b.Website = *p.Website
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Address != nil && *p.Address != b.Address {
		b.Address = *p.Address
		addressChanged = true
	}
	if p.Careers != nil {
		b.Careers = *p.Careers
	}
	if p.Housing != nil {
		b.Housing = *p.Housing
	}
	if p.JobAssistance != nil {
		b.JobAssistance = *p.JobAssistance
	}
	if p.JobGuarantee != nil {
		b.JobGuarantee = *p.JobGuarantee
	}
	if p.AcceptGi != nil {
		b.AcceptGi = *p.AcceptGi
	}
	return addressChanged, b.Validate()
}

// ToEvent es el payload que viaja por el outbox.
func (b *Bootcamp) ToEvent() sharedEvents.BootcampChanged {
	return sharedEvents.BootcampChanged{
		ID:     b.ID.String(),
		UserID: b.User.String(),
		Name:   b.Name,
		Slug:   b.Slug,
	}
}

// RoundCost redondea el coste medio hacia arriba a la decena: 8333.33 -> 8340.
func RoundCost(avg float64) float64 {
	return math.Ceil(avg/10) * 10
}

// EarthRadiusMiles se usa para convertir una distancia en millas a radianes.
const EarthRadiusMiles = 3963.0

// RadiusFromMiles convierte la distancia pedida al radio que espera $centerSphere.
func RadiusFromMiles(distance float64) float64 {
	return distance / EarthRadiusMiles
}
