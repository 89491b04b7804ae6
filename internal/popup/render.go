package popup

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/skip2/go-qrcode"
)

//go:embed templates/*.html
var templateFS embed.FS

var popupTemplate = template.Must(template.New("popup.html").ParseFS(templateFS, "templates/popup.html"))

// DefaultQRSize is the QR code edge length in pixels when none is requested.
const DefaultQRSize = 256

// Render produces the popup markup. Provider text is escaped by html/template.
func Render(content Content) (string, error) {
	var buf bytes.Buffer
	if err := popupTemplate.ExecuteTemplate(&buf, "popup", content); err != nil {
		return "", fmt.Errorf("execute popup template: %w", err)
	}
	return buf.String(), nil
}

// QRCode encodes the popup's map link as a PNG.
func QRCode(content Content, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(content.MapLink, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode map link qr code: %w", err)
	}
	return png, nil
}
