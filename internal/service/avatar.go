package service

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"strings"

	"socialnet/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// AvatarSize is the edge of the square avatar written to the blob store.
	AvatarSize        = 512
	avatarWebPQuality = 80
	avatarContentType = "image/webp"
)

// ProcessAvatar validates an uploaded image, center-crops it to a square,
// scales it down to AvatarSize and re-encodes it as WebP.
func ProcessAvatar(content []byte) ([]byte, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("personal_image: no file was submitted")
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, models.NewValidationError("personal_image: upload a valid image")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("personal_image: upload a valid image")
	}

	square := cropToSquare(decoded)
	scaled := resizeToFit(square, AvatarSize, AvatarSize)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, scaled, &webp.Options{Quality: avatarWebPQuality}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return buf.Bytes(), nil
}

func cropToSquare(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h || w <= 0 || h <= 0 {
		return src
	}
	side := w
	if h < side {
		side = h
	}
	x := b.Min.X + (w-side)/2
	y := b.Min.Y + (h-side)/2
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
