package api

import (
	"fmt"
	"image/png"
	"net/http"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// labelFilename builds a safe attachment filename from a user-supplied code.
func labelFilename(prefix, code string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, code)
	return fmt.Sprintf("%s-%s.png", prefix, sanitized)
}

// BarcodeHandler renders the given code as a Code128 barcode PNG and serves
// it as a download. Nothing is persisted.
func (a *Api) BarcodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	bc, err := code128.Encode(code)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "code cannot be encoded as Code128")
		return
	}
	scaled, err := barcode.Scale(bc, 400, 160)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "code cannot be encoded as Code128")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", labelFilename("barcode", code)))
	png.Encode(w, scaled)
}

// QRCodeHandler renders the given code as a QR PNG, for labels scanned by
// phone cameras rather than laser readers.
func (a *Api) QRCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	img, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "code cannot be encoded as a QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", labelFilename("qrcode", code)))
	w.Write(img)
}
