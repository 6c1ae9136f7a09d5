package export

import (
	"bytes"
	"encoding/json"
	mathrand "math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarlcorp/zpersona/internal/identity"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testIdentity(t *testing.T, advanced bool) identity.Identity {
	t.Helper()
	g := identity.New(
		identity.WithSource(mathrand.New(mathrand.NewPCG(1, 2))),
		identity.WithClock(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }),
	)
	return g.Generate(identity.Hints{Country: identity.Germany, Advanced: advanced})
}

func TestCardOf(t *testing.T) {
	id := testIdentity(t, false)
	c := CardOf(id)

	assert.Equal(t, id.FirstName+" "+id.LastName, c.Name)
	assert.Equal(t, id.BirthDate, c.BirthDate)
	assert.Equal(t, id.Nationality, c.Nationality)
	assert.Equal(t, id.Email, c.Email)
	assert.Equal(t, id.Phone, c.Phone)
	assert.Equal(t, id.IDNumber, c.ID)
}

func TestPayloadKeys(t *testing.T) {
	q := NewQR(0, "")
	payload, err := q.Payload(testIdentity(t, true))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &m))

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"name", "birthDate", "nationality", "email", "phone", "id"}, keys)
	assert.NotContains(t, payload, "credit", "extended attributes must stay out of the code")
}

func TestQRPNG(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		level string
	}{
		{"default", 0, ""},
		{"low", 128, "L"},
		{"medium", 200, "m"},
		{"quartile", 256, "Q"},
		{"high", 300, "H"},
		{"unknown level", 200, "Z"},
	}

	id := testIdentity(t, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			png, err := NewQR(tt.size, tt.level).PNG(id)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(png, pngMagic), "output is not a PNG")
		})
	}
}

func TestNewQRDefaults(t *testing.T) {
	q := NewQR(-5, "nope")
	assert.Equal(t, DefaultQRSize, q.size)
	assert.Equal(t, NewQR(0, "M").level, q.level)
}

func TestQRTerminal(t *testing.T) {
	out, err := NewQR(0, "L").Terminal(testIdentity(t, false))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.NotEmpty(t, lines)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "ragged terminal rendering")
	}
}

func TestParseCard(t *testing.T) {
	id := testIdentity(t, false)
	payload, err := NewQR(0, "").Payload(id)
	require.NoError(t, err)

	c, err := ParseCard(payload)
	require.NoError(t, err)
	assert.Equal(t, CardOf(id), c)

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "hello"},
		{"missing name", `{"id":"123"}`},
		{"missing id", `{"name":"Jane Doe"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCard(tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestFilename(t *testing.T) {
	id := identity.Identity{
		ID:        "3f2b8c1a-1111-4222-8333-444455556666",
		FirstName: "Jörg",
		LastName:  "O'Neil",
	}

	assert.Equal(t, "identity-jorg-oneil-3f2b8c1a.pdf", Filename(id, "pdf"))
	assert.Equal(t, "identity-jorg-oneil-3f2b8c1a", Prefix(id))

	id.ID = "not-a-uuid"
	assert.Equal(t, "identity-jorg-oneil-not-a-uuid.png", Filename(id, "png"))
}

func TestFilenameKeepsBaseLetters(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"Étienne", "Müller", "identity-etienne-muller-0a1b2c3d.pdf"},
		{"João", "Gonçalves", "identity-joao-goncalves-0a1b2c3d.pdf"},
		{"Anaïs", "Lefèvre", "identity-anais-lefevre-0a1b2c3d.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			id := identity.Identity{
				ID:        "0a1b2c3d-1111-4222-8333-444455556666",
				FirstName: tt.first,
				LastName:  tt.last,
			}
			assert.Equal(t, tt.want, Filename(id, "pdf"))
		})
	}
}

func TestWritePDF(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var basic, extended bytes.Buffer
	require.NoError(t, WritePDF(&basic, testIdentity(t, false), at))
	require.NoError(t, WritePDF(&extended, testIdentity(t, true), at))

	for name, buf := range map[string]*bytes.Buffer{"basic": &basic, "extended": &extended} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "missing pdf header")
			assert.Contains(t, buf.String(), "%%EOF")
		})
	}

	assert.Greater(t, extended.Len(), basic.Len(), "extended section should add content")
}

func TestWritePDFHandlesDiacritics(t *testing.T) {
	id := testIdentity(t, false)
	id.FirstName = "Zoë"
	id.LastName = "Müller"

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, id, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
