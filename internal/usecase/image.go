package usecase

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"path/filepath"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/bbrks/go-blurhash"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	recipeImageDir = "uploads/recipe"
	blurHashSize   = 64
	// maxImagePixels ограничивает размер картинки после декодирования
	maxImagePixels = 50_000_000
)

// RecipeImageKey строит ключ файла изображения: uploads/recipe/<uuid><ext>.
// Расширение берется из исходного имени файла, иначе из формата изображения.
func RecipeImageKey(filename, format string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" && format != "" {
		ext = "." + format
	}
	return path.Join(recipeImageDir, uuid.NewString()+ext)
}

// decodedImage — проверенное загруженное изображение
type decodedImage struct {
	data     []byte
	format   string
	blurHash string
}

func (d decodedImage) contentType() string {
	return "image/" + d.format
}

// decodeImage проверяет, что данные являются изображением поддерживаемого формата
func decodeImage(data []byte) (*decodedImage, error) {
	invalid := domain.FieldError("image", "upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	if len(data) == 0 {
		return nil, domain.FieldError("image", "the submitted file is empty.")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalid.WithCause(err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, domain.FieldError("image", fmt.Sprintf(
			"image is too large: %dx%d pixels, at most %d pixels are allowed.", cfg.Width, cfg.Height, maxImagePixels))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalid.WithCause(err)
	}

	hash, err := blurhash.Encode(4, 3, resizeForBlurHash(img))
	if err != nil {
		return nil, fmt.Errorf("encode blurhash: %w", err)
	}
	return &decodedImage{data: data, format: format, blurHash: hash}, nil
}

// resizeForBlurHash уменьшает изображение до миниатюры: для blurhash этого достаточно
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()
	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	dstWidth, dstHeight := blurHashSize, blurHashSize
	if srcWidth > srcHeight {
		dstHeight = max(srcHeight*blurHashSize/srcWidth, 1)
	} else {
		dstWidth = max(srcWidth*blurHashSize/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)
	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			dst.Set(x, y, img.At(bounds.Min.X+int(float64(x)*xRatio), bounds.Min.Y+int(float64(y)*yRatio)))
		}
	}
	return dst
}
