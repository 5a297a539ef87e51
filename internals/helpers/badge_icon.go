package helper

import (
	"bytes"
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const badgeIconMaxSide = 512

// SaveBadgeIcon decodes an uploaded image, resizes it to fit 512x512 and
// stores it as webp under uploadDir. Returns the public URL path.
func SaveBadgeIcon(uploadDir string, fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	img = imaging.Fit(img, badgeIconMaxSide, badgeIconMaxSide, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	filename := generateUniqueFilename(fileHeader.Filename)
	if err := os.WriteFile(filepath.Join(uploadDir, filename), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write icon: %w", err)
	}

	return "/uploads/badges/" + filename, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func generateUniqueFilename(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeFilenameChars.ReplaceAllString(base, "-")
	if base == "" {
		base = "badge"
	}
	return fmt.Sprintf("%s-%d-%s.webp", base, time.Now().Unix(), uuid.NewString()[:8])
}
