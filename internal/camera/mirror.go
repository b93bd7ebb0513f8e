// Package camera mirrors video frames for display. Frames are not analysed.
package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
)

// Limits on an uploaded frame.
const (
	MaxFrameBytes  = 8 << 20
	MaxFrameWidth  = 4096
	MaxFrameHeight = 4096
)

// ErrFrameTooLarge is returned for frames over the byte or pixel limits.
var ErrFrameTooLarge = errors.New("frame too large")

// Mirror returns a horizontally flipped copy of img.
func Mirror(img image.Image) *image.RGBA {
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	out := image.NewRGBA(src.Bounds())
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(dst[(w-1-x)*4:(w-x)*4], row[x*4:(x+1)*4])
		}
	}
	return out
}

// MirrorEncoded decodes a PNG or JPEG frame, mirrors it, and re-encodes it in
// the same format. It returns the encoded frame and its format name.
func MirrorEncoded(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFrameBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading frame: %w", err)
	}
	if len(data) > MaxFrameBytes {
		return nil, "", fmt.Errorf("%w: over %d bytes", ErrFrameTooLarge, MaxFrameBytes)
	}

	// Check the header dimensions before allocating pixel buffers.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding frame header: %w", err)
	}
	if cfg.Width > MaxFrameWidth || cfg.Height > MaxFrameHeight {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrFrameTooLarge, cfg.Width, cfg.Height, MaxFrameWidth, MaxFrameHeight)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding frame: %w", err)
	}

	mirrored := Mirror(img)
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, mirrored, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, mirrored)
	default:
		return nil, "", fmt.Errorf("unsupported frame format %q", format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("encoding %s frame: %w", format, err)
	}
	return buf.Bytes(), format, nil
}
