package files

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"

	// Register the webp decoder.
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// Image MIME types understood by ResizeImage.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWEBP = "image/webp"
)

var ErrUnsupportedImage = errors.New("files: unsupported image")

// DetectMime sniffs the content type from the leading bytes.
func DetectMime(data []byte) string {
	return http.DetectContentType(data)
}

// Extension returns the file extension ResizeImage output uses for mime.
// WebP has no encoder here and is re-encoded as JPEG.
func Extension(mime string) string {
	switch mime {
	case MimePNG:
		return ".png"
	case MimeGIF:
		return ".gif"
	default:
		return ".jpg"
	}
}

// ResizeImage shrinks the image to fit inside maxW x maxH, keeping the
// aspect ratio. Smaller images keep their size but are still re-encoded,
// which strips metadata. quality applies to JPEG output.
func ResizeImage(data []byte, mime string, maxW, maxH, quality int) ([]byte, error) {
	if DetectMime(data) != mime {
		return nil, fmt.Errorf("%w: content is not %s", ErrUnsupportedImage, mime)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := src.Bounds()
	w, h := fitInside(bounds.Dx(), bounds.Dy(), maxW, maxH)

	var dst image.Image = src
	if w != bounds.Dx() || h != bounds.Dy() {
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), src, bounds, draw.Over, nil)
		dst = rgba
	}

	var buf bytes.Buffer
	switch mime {
	case MimePNG:
		err = png.Encode(&buf, dst)
	case MimeGIF:
		err = gif.Encode(&buf, dst, nil)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: clampQuality(quality)})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	return buf.Bytes(), nil
}

// fitInside scales w x h down to fit the box. Non-positive box sides are
// unbounded.
func fitInside(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 {
		maxW = w
	}
	if maxH <= 0 {
		maxH = h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	// Compare w/maxW with h/maxH without floats.
	if w*maxH >= h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

func clampQuality(q int) int {
	if q < 1 || q > 100 {
		return jpeg.DefaultQuality
	}
	return q
}
