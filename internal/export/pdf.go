package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/zarlcorp/zpersona/internal/identity"
)

const disclaimer = "This document was generated for testing purposes only. " +
	"The information it contains is fictitious and has no legal value."

// page geometry in millimetres
const (
	margin     = 20.0
	labelWidth = 45.0
	lineHeight = 7.0
	photoX     = 150.0
	photoY     = 40.0
	photoW     = 40.0
	photoH     = 50.0
)

// WritePDF renders id on a single A4 page and writes it to w. at is printed
// as the generation date and stamped as the document creation date.
func WritePDF(w io.Writer, id identity.Identity, at time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(id.Name(), true)
	pdf.SetCreator("zpersona", true)
	pdf.SetCreationDate(at)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "Identity Card", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, "Generated on "+at.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	// photo frame
	pdf.SetDrawColor(150, 150, 150)
	pdf.Rect(photoX, photoY, photoW, photoH, "D")
	pdf.SetXY(photoX, photoY+photoH/2-3)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(photoW, 6, "PHOTO", "", 0, "C", false, 0, "")

	pdf.SetXY(margin, photoY)
	section(pdf, "Identity")
	field(pdf, tr, "Name", id.Name())
	field(pdf, tr, "Gender", string(id.Gender))
	field(pdf, tr, "Birth date", id.BirthDate)
	field(pdf, tr, "Nationality", id.Nationality)
	field(pdf, tr, "ID number", id.IDNumber)

	pdf.SetY(photoY + photoH + 5)
	section(pdf, "Contact")
	field(pdf, tr, "Email", id.Email)
	field(pdf, tr, "Phone", id.Phone)

	section(pdf, "Address")
	field(pdf, tr, "Street", id.Address.Street)
	field(pdf, tr, "City", id.Address.City)
	field(pdf, tr, "Zip code", id.Address.ZipCode)
	field(pdf, tr, "Country", string(id.Address.Country))
	if c := id.Address.Coordinates; c != nil {
		field(pdf, tr, "Coordinates", fmt.Sprintf("%.5f, %.5f", c.Latitude, c.Longitude))
	}

	if d := id.Details; d != nil {
		section(pdf, "Profile")
		field(pdf, tr, "Occupation", d.Occupation)
		field(pdf, tr, "Education", d.Education)
		field(pdf, tr, "Languages", strings.Join(d.Languages, ", "))
		field(pdf, tr, "Traits", strings.Join(d.PersonalityTraits, ", "))
		field(pdf, tr, "Blood type", d.BloodType)
		field(pdf, tr, "Height", strconv.Itoa(d.Height)+" cm")
		field(pdf, tr, "Weight", strconv.Itoa(d.Weight)+" kg")
		field(pdf, tr, "Card", d.CreditCard.Type+" "+d.CreditCard.Number+" exp "+d.CreditCard.Expiry)

		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(d.Biography), "", "L", false)
	}

	pdf.SetY(-margin - 12)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(margin, pdf.GetY(), 210-margin, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(0, 4, disclaimer, "", "C", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func field(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, tr(value), "", 1, "L", false, 0, "")
}
