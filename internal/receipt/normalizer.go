// Package receipt normalizes uploaded receipt images into a single
// storage format: RGB JPEG, at most 800 pixels wide.
package receipt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxWidth is the widest a stored receipt may be. Wider uploads are
	// scaled down preserving aspect ratio.
	MaxWidth = 800

	// JPEGQuality is the encoder quality for stored receipts.
	JPEGQuality = 60
)

var ErrUndecodable = errors.New("receipt image could not be decoded")

// Normalized is the result of running an upload through the pipeline.
type Normalized struct {
	// FileName is the original base name with its extension replaced
	// by .jpg.
	FileName string
	// SHA256 is the hex digest of Data.
	SHA256 string
	// Data is the encoded JPEG.
	Data []byte
	// Unchanged reports that Data hashes to prevSHA, meaning the
	// stored copy is already this exact image.
	Unchanged bool
}

// Normalize decodes the upload, flattens any alpha channel onto white,
// scales it down to MaxWidth if wider, and re-encodes it as JPEG.
// prevSHA may be empty; when the upload is byte-identical to the file
// already stored under prevSHA the result is flagged Unchanged without
// re-encoding, since a JPEG round trip would not reproduce the exact
// stored bytes.
func Normalize(data []byte, originalName, prevSHA string) (*Normalized, error) {
	if prevSHA != "" {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) == prevSHA {
			return &Normalized{
				FileName:  jpegName(originalName),
				SHA256:    prevSHA,
				Data:      data,
				Unchanged: true,
			}, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUndecodable
	}

	flat := flatten(img)

	bounds := flat.Bounds()
	if w := bounds.Dx(); w > MaxWidth {
		// Integer height keeps the scaled dimensions deterministic.
		h := bounds.Dy() * MaxWidth / w
		if h < 1 {
			h = 1
		}
		flat = imaging.Resize(flat, MaxWidth, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(buf.Bytes())
	digest := hex.EncodeToString(sum[:])

	return &Normalized{
		FileName:  jpegName(originalName),
		SHA256:    digest,
		Data:      buf.Bytes(),
		Unchanged: prevSHA != "" && digest == prevSHA,
	}, nil
}

// flatten composites the image over a white background so transparent
// regions do not turn black when encoded as JPEG.
func flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}

func jpegName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "receipt"
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".jpg"
}
