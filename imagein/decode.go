package imagein

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	// Codec registration for image.Decode. PNG goes through the apng decoder
	// below so animated files resolve to their default image.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kettek/apng"
	"github.com/rwcarlsen/goexif/exif"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// decodeBytes decodes an encoded image into a Handle, converting every
// sample to float32 and recording the native channel count and sample
// format. The color-space tag is read from metadata when present.
func decodeBytes(data []byte, path string) (*Handle, error) {
	var img image.Image
	if bytes.HasPrefix(data, pngMagic) {
		a, err := apng.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		for _, f := range a.Frames {
			if f.IsDefault {
				img = f.Image
				break
			}
		}
		if img == nil && len(a.Frames) > 0 {
			img = a.Frames[0].Image
		}
		if img == nil {
			return nil, fmt.Errorf("failed to read image: %s", path)
		}
	} else {
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return nil, fmt.Errorf("failed to read image: %s", path)
			}
			return nil, err
		}
		img = decoded
	}

	h := fromImage(img)
	if h.width <= 0 || h.height <= 0 {
		return nil, fmt.Errorf("failed to read image: %s", path)
	}
	h.colorSpace = detectColorSpace(data)
	return h, nil
}

// detectColorSpace reads the EXIF ColorSpace tag when the file carries EXIF.
// Absence of a tag is normal and reads as "".
func detectColorSpace(data []byte) string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	tag, err := x.Get(exif.ColorSpace)
	if err != nil {
		return ""
	}
	if v, err := tag.Int(0); err == nil && v == 1 {
		return "sRGB"
	}
	return ""
}

// fromImage converts a decoded image into the interleaved float32 pixel
// store. The concrete image type decides the native channel count and sample
// format; anything without a dedicated case goes through the generic
// 16-bit-per-channel path.
func fromImage(img image.Image) *Handle {
	b := img.Bounds()
	w, hgt := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		h := newHandle(w, hgt, 1, FormatUInt8)
		i := 0
		for y := 0; y < hgt; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				h.samples[i] = float32(row[x]) / 0xff
				i++
			}
		}
		return h

	case *image.Gray16:
		h := newHandle(w, hgt, 1, FormatUInt16)
		i := 0
		for y := 0; y < hgt; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				v := uint16(row[2*x])<<8 | uint16(row[2*x+1])
				h.samples[i] = float32(v) / 0xffff
				i++
			}
		}
		return h

	case *image.NRGBA:
		h := newHandle(w, hgt, 4, FormatUInt8)
		i := 0
		for y := 0; y < hgt; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < 4*w; x++ {
				h.samples[i] = float32(row[x]) / 0xff
				i++
			}
		}
		return h

	case *image.NRGBA64:
		h := newHandle(w, hgt, 4, FormatUInt16)
		i := 0
		for y := 0; y < hgt; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < 4*w; x++ {
				v := uint16(row[2*x])<<8 | uint16(row[2*x+1])
				h.samples[i] = float32(v) / 0xffff
				i++
			}
		}
		return h

	case *image.YCbCr:
		h := newHandle(w, hgt, 3, FormatUInt8)
		i := 0
		for y := 0; y < hgt; y++ {
			for x := 0; x < w; x++ {
				yi := src.YOffset(b.Min.X+x, b.Min.Y+y)
				ci := src.COffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				h.samples[i] = float32(r) / 0xff
				h.samples[i+1] = float32(g) / 0xff
				h.samples[i+2] = float32(bl) / 0xff
				i += 3
			}
		}
		return h

	case *image.CMYK:
		// Native channels are kept as decoded; normalisation maps the first
		// four channels by index, it does not convert between color models.
		h := newHandle(w, hgt, 4, FormatUInt8)
		i := 0
		for y := 0; y < hgt; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < 4*w; x++ {
				h.samples[i] = float32(row[x]) / 0xff
				i++
			}
		}
		return h

	default:
		h := newHandle(w, hgt, 4, colorModelFormat(img.ColorModel()))
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, a := img.At(x, y).RGBA()
				if a != 0 && a != 0xffff {
					// RGBA() is alpha-premultiplied; store straight values.
					r = r * 0xffff / a
					g = g * 0xffff / a
					bl = bl * 0xffff / a
				}
				h.samples[i] = float32(r) / 0xffff
				h.samples[i+1] = float32(g) / 0xffff
				h.samples[i+2] = float32(bl) / 0xffff
				h.samples[i+3] = float32(a) / 0xffff
				i += 4
			}
		}
		return h
	}
}

func newHandle(w, h, channels int, format SampleFormat) *Handle {
	return &Handle{
		width:    w,
		height:   h,
		channels: channels,
		format:   format,
		samples:  make([]float32, w*h*channels),
	}
}

// colorModelFormat infers the sample format for images handled by the
// generic path by probing the color model, the same trick TIFF metadata
// readers use for custom models.
func colorModelFormat(m color.Model) SampleFormat {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.GrayModel, color.AlphaModel:
		return FormatUInt8
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model, color.Alpha16Model:
		return FormatUInt16
	}
	r, g, b, a := m.Convert(color.RGBA{R: 255, A: 255}).RGBA()
	if r|g|b|a <= 0xff {
		return FormatUInt8
	}
	return FormatUInt16
}
