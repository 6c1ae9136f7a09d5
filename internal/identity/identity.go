// Package identity fabricates synthetic personal records.
// Generation is side-effect free: it reads only the injected random source
// and clock, never the filesystem or network.
package identity

import (
	"strings"
	"time"
)

// Gender of a generated persona. The zero value means unspecified.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// ParseGender maps user input to a Gender. Unknown input yields the zero
// value so the generator picks one itself.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male
	case "female", "f":
		return Female
	case "other", "o", "x":
		return Other
	}
	return ""
}

// Hints bias generation. Every field is optional.
type Hints struct {
	Gender      Gender
	Nationality string
	Country     Country
	Advanced    bool
}

// Coordinates is a point inside the country's bounding box.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address fields all come from the same country table.
type Address struct {
	Street      string       `json:"street"`
	City        string       `json:"city"`
	ZipCode     string       `json:"zip_code"`
	Country     Country      `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Identity holds a complete generated persona. Details is nil for a basic
// record and fully populated for an extended one.
type Identity struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Gender       Gender    `json:"gender"`
	BirthDate    string    `json:"birth_date"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	IDNumber     string    `json:"id_number"`
	Address      Address   `json:"address"`
	Nationality  string    `json:"nationality"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Details      *Details  `json:"details,omitempty"`
}

// CreditCard is a fabricated payment card. Numbers do not pass a Luhn check.
type CreditCard struct {
	Type   string `json:"type"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Social holds profile URLs derived from the persona's name.
type Social struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// Signature is a fabricated handwritten signature.
type Signature struct {
	Image  string    `json:"image"`
	Vector []float64 `json:"vector"`
}

// Details are the extended attributes of an advanced record.
type Details struct {
	BloodType         string     `json:"blood_type"`
	Height            int        `json:"height"`
	Weight            int        `json:"weight"`
	Occupation        string     `json:"occupation"`
	Education         string     `json:"education"`
	Languages         []string   `json:"languages"`
	PersonalityTraits []string   `json:"personality_traits"`
	CreditCard        CreditCard `json:"credit_card"`
	Social            Social     `json:"social"`
	Biography         string     `json:"biography"`
	Signature         Signature  `json:"signature"`
	Fingerprint       string     `json:"fingerprint"`
	FacialBiometrics  []float64  `json:"facial_biometrics"`
}

// Name returns "First Last".
func (id Identity) Name() string {
	return id.FirstName + " " + id.LastName
}

// Extended reports whether the record carries the extended attribute set.
func (id Identity) Extended() bool {
	return id.Details != nil
}

// Birth parses BirthDate. The zero time is returned for malformed input.
func (id Identity) Birth() time.Time {
	t, err := time.Parse(dateLayout, id.BirthDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// WithPhoto returns a copy with the profile image replaced.
func WithPhoto(id Identity, ref string) Identity {
	if ref != "" {
		id.ProfileImage = ref
	}
	return id
}

// WithBiography returns a copy with the biography replaced. Basic records
// have no biography and are returned unchanged.
func WithBiography(id Identity, text string) Identity {
	text = strings.TrimSpace(text)
	if text == "" || id.Details == nil {
		return id
	}
	d := *id.Details
	d.Biography = text
	id.Details = &d
	return id
}

// Basic returns a copy with every extended attribute removed, coordinates
// included.
func Basic(id Identity) Identity {
	id.Details = nil
	id.Address.Coordinates = nil
	return id
}

// Age returns the number of whole years between birth and at.
func Age(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years
}
