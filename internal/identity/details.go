package identity

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// extend attaches the full extended attribute set, coordinates included.
// It is the only code path that produces an extended record.
func (g *Generator) extend(id Identity, now time.Time) Identity {
	t := Lookup(id.Address.Country)
	id.Address.Coordinates = g.coordinates(t.Bounds)

	d := &Details{
		BloodType:         g.pick(bloodTypes),
		Height:            g.between(minHeight, maxHeight),
		Weight:            g.between(minWeight, maxWeight),
		Occupation:        g.pick(occupations),
		Education:         g.pick(educationLevels),
		Languages:         g.sample(languages, g.between(minLanguages, maxLanguages)),
		PersonalityTraits: g.traits(),
		CreditCard:        g.creditCard(now),
		Social:            g.social(id.FirstName, id.LastName),
		Fingerprint:       g.hex(fingerprintLen),
		FacialBiometrics:  g.vector(facialVectorLen, -1, 1),
		Signature:         g.signature(),
	}
	d.Biography = g.biography(id, d)

	id.Details = d
	return id
}

// traits draws from the positive and neutral pools, sometimes the negative one.
func (g *Generator) traits() []string {
	pool := make([]string, 0, len(positiveTraits)+len(neutralTraits)+len(negativeTraits))
	pool = append(pool, positiveTraits...)
	pool = append(pool, neutralTraits...)
	if g.src.Float64() < negativeTraitChance {
		pool = append(pool, negativeTraits...)
	}
	return g.sample(pool, g.between(minTraits, maxTraits))
}

func (g *Generator) creditCard(now time.Time) CreditCard {
	ct := cardTypes[g.src.IntN(len(cardTypes))]
	return CreditCard{
		Type:   ct.name,
		Number: g.fill(ct.pattern),
		Expiry: fmt.Sprintf("%02d/%d", g.between(1, 12), now.Year()+g.between(minExpiryYears, maxExpiryYears)),
		CVV:    g.fill("###"),
	}
}

func (g *Generator) social(first, last string) Social {
	f, l := Slug(first), Slug(last)
	return Social{
		Facebook:  fmt.Sprintf("https://facebook.com/%s.%s%d", f, l, g.between(1, 999)),
		Twitter:   fmt.Sprintf("https://twitter.com/%s%s%d", f, l[:min(2, len(l))], g.between(1, 9999)),
		Instagram: fmt.Sprintf("https://instagram.com/%s_%s%d", f, l, g.between(1, 999)),
		LinkedIn:  fmt.Sprintf("https://linkedin.com/in/%s-%s-%d", f, l, g.between(10000, 99999)),
	}
}

func (g *Generator) hex(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = hexDigits[g.src.IntN(len(hexDigits))]
	}
	return string(b)
}

// vector returns n independent samples in [lo, hi).
func (g *Generator) vector(n int, lo, hi float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = lo + g.src.Float64()*(hi-lo)
	}
	return v
}

// signature renders the stroke vector as an inline SVG polyline.
func (g *Generator) signature() Signature {
	v := g.vector(signatureLen, 0, 1)

	var pts strings.Builder
	step := 200.0 / float64(len(v)-1)
	for i, y := range v {
		if i > 0 {
			pts.WriteByte(' ')
		}
		fmt.Fprintf(&pts, "%.1f,%.1f", float64(i)*step, 5+y*50)
	}

	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="60" viewBox="0 0 200 60">` +
		`<polyline fill="none" stroke="black" stroke-width="1.5" points="` + pts.String() + `"/></svg>`

	return Signature{
		Image:  "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
		Vector: v,
	}
}

var biographies = []func(id Identity, d *Details) string{
	func(id Identity, d *Details) string {
		return fmt.Sprintf("%s is %s %s %s. Born on %s, they earned %s %s before starting their career. %s and %s are their main qualities.",
			id.FirstName, article(id.Nationality), id.Nationality, d.Occupation,
			id.BirthDate, article(d.Education), d.Education,
			d.PersonalityTraits[0], strings.ToLower(d.PersonalityTraits[1]))
	},
	func(id Identity, d *Details) string {
		return fmt.Sprintf("Originally from %s, %s developed a passion for working as %s %s. With a %s temperament, they excel in their field. Holding %s %s, they speak %s fluently.",
			id.Address.City, id.FirstName, article(d.Occupation), d.Occupation,
			strings.ToLower(d.PersonalityTraits[0]), article(d.Education), d.Education,
			joinList(d.Languages, ", "))
	},
	func(id Identity, d *Details) string {
		return fmt.Sprintf("An experienced %s, %s is known for a %s approach. After earning %s %s, they built a solid career. Outside work they keep up with foreign languages and speak %s.",
			d.Occupation, id.FirstName, strings.ToLower(d.PersonalityTraits[0]),
			article(d.Education), d.Education, joinList(d.Languages, " and "))
	},
}

func (g *Generator) biography(id Identity, d *Details) string {
	return biographies[g.src.IntN(len(biographies))](id, d)
}

// article picks "a" or "an" for the word that follows.
func article(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}

// joinList joins items, using "and" before the last one.
func joinList(items []string, sep string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	if sep == " and " {
		return strings.Join(items, sep)
	}
	return strings.Join(items[:len(items)-1], sep) + " and " + items[len(items)-1]
}
