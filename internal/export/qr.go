// Package export renders identities as printable documents and scannable codes.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// DefaultQRSize is the PNG edge length in pixels.
const DefaultQRSize = 200

// Card is the reduced projection encoded into a QR code.
type Card struct {
	Name        string `json:"name"`
	BirthDate   string `json:"birthDate"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ID          string `json:"id"`
}

// CardOf projects id onto its card fields.
func CardOf(id identity.Identity) Card {
	return Card{
		Name:        id.Name(),
		BirthDate:   id.BirthDate,
		Nationality: id.Nationality,
		Email:       id.Email,
		Phone:       id.Phone,
		ID:          id.IDNumber,
	}
}

// QR encodes identity cards as PNG QR codes.
type QR struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewQR creates a QR exporter. level is one of L, M, Q or H; anything else
// selects M. A non-positive size selects DefaultQRSize.
func NewQR(size int, level string) *QR {
	var l qrcode.RecoveryLevel
	switch strings.ToUpper(level) {
	case "L":
		l = qrcode.Low
	case "Q":
		l = qrcode.High
	case "H":
		l = qrcode.Highest
	default:
		l = qrcode.Medium
	}

	if size <= 0 {
		size = DefaultQRSize
	}

	return &QR{size: size, level: l}
}

// Payload returns the JSON text encoded into the code.
func (q *QR) Payload(id identity.Identity) (string, error) {
	data, err := json.Marshal(CardOf(id))
	if err != nil {
		return "", fmt.Errorf("marshal card: %w", err)
	}
	return string(data), nil
}

// PNG renders id's card as a PNG image.
func (q *QR) PNG(id identity.Identity) ([]byte, error) {
	payload, err := q.Payload(id)
	if err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}

	code, err := qrcode.New(payload, q.level)
	if err != nil {
		return nil, fmt.Errorf("qr png: create code: %w", err)
	}

	png, err := code.PNG(q.size)
	if err != nil {
		return nil, fmt.Errorf("qr png: encode: %w", err)
	}

	return png, nil
}

// Terminal renders id's card as block characters for display in a terminal.
func (q *QR) Terminal(id identity.Identity) (string, error) {
	payload, err := q.Payload(id)
	if err != nil {
		return "", fmt.Errorf("qr terminal: %w", err)
	}

	code, err := qrcode.New(payload, q.level)
	if err != nil {
		return "", fmt.Errorf("qr terminal: create code: %w", err)
	}

	return halfBlocks(code.Bitmap()), nil
}

// halfBlocks packs two bitmap rows into each line of text. Light modules
// are drawn filled so the code scans on a dark terminal.
func halfBlocks(bm [][]bool) string {
	var b strings.Builder
	for y := 0; y < len(bm); y += 2 {
		for x := range bm[y] {
			top := !bm[y][x]
			bottom := y+1 < len(bm) && !bm[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseCard decodes a scanned payload back into a Card.
func ParseCard(payload string) (Card, error) {
	var c Card
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Card{}, fmt.Errorf("parse card: %w", err)
	}
	if strings.TrimSpace(c.Name) == "" {
		return Card{}, fmt.Errorf("parse card: missing name")
	}
	if c.ID == "" {
		return Card{}, fmt.Errorf("parse card: missing id")
	}
	return c, nil
}

// Filename returns a stable file name for an export of id.
func Filename(id identity.Identity, ext string) string {
	short := id.ID
	if u, err := uuid.Parse(id.ID); err == nil {
		short = strings.SplitN(u.String(), "-", 2)[0]
	}
	return fmt.Sprintf("identity-%s-%s.%s", slugName(id), short, ext)
}

// Prefix returns the file name prefix shared by every export of id.
func Prefix(id identity.Identity) string {
	return strings.TrimSuffix(Filename(id, ""), ".")
}

func slugName(id identity.Identity) string {
	return identity.Slug(id.FirstName) + "-" + identity.Slug(id.LastName)
}
