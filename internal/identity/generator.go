package identity

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Source supplies uniform randomness. *math/rand/v2.Rand satisfies it, so a
// seeded PCG source makes generation reproducible.
type Source interface {
	IntN(n int) int
	Float64() float64
	Uint64() uint64
}

// Generator produces random identity data. The default source reads
// crypto/rand. A Generator is safe for concurrent use.
type Generator struct {
	mu           sync.Mutex
	src          Source
	now          func() time.Time
	domains      []string
	placeholders []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource replaces the random source.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// WithClock replaces the wall clock used for CreatedAt and age computation.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithDomains replaces the email domain pool. Empty entries are dropped.
func WithDomains(domains ...string) Option {
	return func(g *Generator) {
		if d := nonEmpty(domains); len(d) > 0 {
			g.domains = d
		}
	}
}

// WithPlaceholders replaces the profile image placeholder pool.
func WithPlaceholders(refs ...string) Option {
	return func(g *Generator) {
		if p := nonEmpty(refs); len(p) > 0 {
			g.placeholders = p
		}
	}
}

// New creates a generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		src:          mathrand.New(cryptoSource{}),
		now:          time.Now,
		domains:      defaultDomains,
		placeholders: defaultPlaceholders,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a complete random identity. Hints that name no
// supported country degrade to the default country's tables.
func (g *Generator) Generate(h Hints) Identity {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	id := g.basic(h, now)
	if h.Advanced {
		id = g.extend(id, now)
	}
	return id
}

// GenerateBatch produces count independent identities.
func (g *Generator) GenerateBatch(count int, h Hints) []Identity {
	if count <= 0 {
		return []Identity{}
	}
	ids := make([]Identity, 0, count)
	for range count {
		ids = append(ids, g.Generate(h))
	}
	return ids
}

// Email composes an address from a name using one of five templates.
// Diacritics are stripped and the local part is lower-case ASCII.
func (g *Generator) Email(first, last string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email(first, last)
}

func (g *Generator) basic(h Hints, now time.Time) Identity {
	gender := g.gender(h.Gender)
	t := Lookup(g.country(h))
	first := g.firstName(t, gender)
	last := g.pick(t.Surnames)

	nationality := strings.TrimSpace(h.Nationality)
	if nationality == "" {
		nationality = t.Demonym
	}

	return Identity{
		ID:        g.uuid(),
		FirstName: first,
		LastName:  last,
		Gender:    gender,
		BirthDate: g.birthDate(now).Format(dateLayout),
		Email:     g.email(first, last),
		Phone:     g.fill(t.Phone),
		IDNumber:  g.fill(t.IDNumber),
		Address: Address{
			Street:  fmt.Sprintf("%s %d", g.pick(t.Streets), g.between(1, maxStreetNumber)),
			City:    g.pick(t.Cities),
			ZipCode: g.fill(t.Zip),
			Country: t.Country,
		},
		Nationality:  nationality,
		ProfileImage: g.pick(g.placeholders),
		CreatedAt:    now,
	}
}

// gender resolves the hint. "other" is only ever chosen when asked for.
func (g *Generator) gender(hint Gender) Gender {
	switch hint {
	case Male, Female, Other:
		return hint
	}
	if g.src.IntN(2) == 0 {
		return Male
	}
	return Female
}

// country resolves the explicit country, then the nationality, then a
// uniform draw over the supported set.
func (g *Generator) country(h Hints) Country {
	if h.Country != "" {
		return h.Country
	}
	if c, ok := ParseCountry(h.Nationality); ok {
		return c
	}
	return Countries[g.src.IntN(len(Countries))]
}

func (g *Generator) firstName(t Table, gender Gender) string {
	switch gender {
	case Male:
		return g.pick(t.Male)
	case Female:
		return g.pick(t.Female)
	}
	i := g.src.IntN(len(t.Male) + len(t.Female))
	if i < len(t.Male) {
		return t.Male[i]
	}
	return t.Female[i-len(t.Male)]
}

// birthDate draws a calendar day whose age at now is within [minAge, maxAge].
func (g *Generator) birthDate(now time.Time) time.Time {
	today := dateOf(now)
	lo := today.AddDate(-maxAge, 0, 0)
	hi := today.AddDate(-minAge, 0, 0)

	// AddDate rolls Feb 29 into March
	for Age(hi, today) < minAge {
		hi = hi.AddDate(0, 0, -1)
	}
	for Age(lo, today) > maxAge {
		lo = lo.AddDate(0, 0, 1)
	}

	days := int(hi.Sub(lo) / (24 * time.Hour))
	return lo.AddDate(0, 0, g.src.IntN(days+1))
}

func (g *Generator) email(first, last string) string {
	f, l := Slug(first), Slug(last)
	if f == "" {
		f = "user"
	}
	if l == "" {
		l = "anon"
	}

	var local string
	switch g.src.IntN(5) {
	case 0:
		local = f + "." + l
	case 1:
		local = fmt.Sprintf("%s%d", f, g.between(1, 99))
	case 2:
		local = f[:1] + l
	case 3:
		local = l + "." + f[:1]
	default:
		local = fmt.Sprintf("%s%s%d", f, l, g.between(1, 99))
	}

	return local + "@" + g.pick(g.domains)
}

func (g *Generator) coordinates(b orb.Bound) *Coordinates {
	p := orb.Point{
		b.Min.X() + g.src.Float64()*(b.Max.X()-b.Min.X()),
		b.Min.Y() + g.src.Float64()*(b.Max.Y()-b.Min.Y()),
	}
	return &Coordinates{Latitude: p.Lat(), Longitude: p.Lon()}
}

// uuid builds a version 4 UUID from the generator's source.
func (g *Generator) uuid() string {
	u, err := uuid.NewRandomFromReader(sourceReader{g.src})
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// fill expands a digit pattern (see Table).
func (g *Generator) fill(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '#':
			b.WriteByte('0' + byte(g.src.IntN(10)))
		case '%':
			b.WriteByte('1' + byte(g.src.IntN(9)))
		case '@':
			b.WriteByte('A' + byte(g.src.IntN(26)))
		case '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				b.WriteString(pattern[i:])
				return b.String()
			}
			if set := pattern[i+1 : i+end]; set != "" {
				b.WriteByte(set[g.src.IntN(len(set))])
			}
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// pick returns a random element from a string slice.
func (g *Generator) pick(s []string) string {
	return s[g.src.IntN(len(s))]
}

// between returns a random int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.src.IntN(hi-lo+1)
}

// sample draws n distinct elements using a partial Fisher-Yates shuffle.
func (g *Generator) sample(s []string, n int) []string {
	pool := append([]string(nil), s...)
	n = min(n, len(pool))
	for i := range n {
		j := i + g.src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Slug lower-cases s, strips diacritics and drops everything outside [a-z0-9].
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(out) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nonEmpty(s []string) []string {
	var out []string
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// cryptoSource is a math/rand/v2 Source backed by crypto/rand.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// sourceReader adapts a Source to io.Reader for uuid generation.
type sourceReader struct {
	src Source
}

func (r sourceReader) Read(p []byte) (int, error) {
	var b [8]byte
	for i := 0; i < len(p); i += len(b) {
		binary.LittleEndian.PutUint64(b[:], r.src.Uint64())
		copy(p[i:], b[:])
	}
	return len(p), nil
}
