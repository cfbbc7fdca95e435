package voucherpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/url"
	"path"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ImageFormat is one of the two supported raster formats
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
)

// FormatFromReference picks the decoder from the reference's file extension.
func FormatFromReference(ref string) (ImageFormat, error) {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return ImageFormatPNG, nil
	case ".jpg", ".jpeg":
		return ImageFormatJPEG, nil
	}
	return "", fmt.Errorf("unsupported image format for %q", ref)
}

// DecodeImage decodes raw bytes in the given format
func DecodeImage(data []byte, format ImageFormat) (image.Image, error) {
	switch format {
	case ImageFormatPNG:
		return png.Decode(bytes.NewReader(data))
	case ImageFormatJPEG:
		return jpeg.Decode(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unsupported image format %q", format)
}

// addImage stores img as an RGB image XObject, with a soft mask when it has transparency.
func (d *document) addImage(img image.Image) (types.IndirectRef, int, int, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return types.IndirectRef{}, 0, 0, fmt.Errorf("image has no pixels")
	}

	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	opaque := true
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				rgb = append(rgb, 0xFF, 0xFF, 0xFF)
			} else {
				// un-premultiply
				rgb = append(rgb, byte(r*0xFF/a), byte(g*0xFF/a), byte(bl*0xFF/a))
			}
			alpha = append(alpha, byte(a>>8))
			if a != 0xFFFF {
				opaque = false
			}
		}
	}

	dict := imageDict(w, h, "DeviceRGB")
	if !opaque {
		mask, err := d.addStream(imageDict(w, h, "DeviceGray"), alpha, true)
		if err != nil {
			return types.IndirectRef{}, 0, 0, err
		}
		dict["SMask"] = mask
	}
	ref, err := d.addStream(dict, rgb, true)
	if err != nil {
		return types.IndirectRef{}, 0, 0, err
	}
	return ref, w, h, nil
}

func imageDict(w, h int, colorSpace string) types.Dict {
	return types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(w),
		"Height":           types.Integer(h),
		"ColorSpace":       types.Name(colorSpace),
		"BitsPerComponent": types.Integer(8),
	}
}

// addImageForm wraps an image XObject in a form XObject of the given box, centered and aspect-fitted.
func (d *document) addImageForm(imgRef types.IndirectRef, imgW, imgH int, boxW, boxH float64) (types.IndirectRef, error) {
	w, h := fit(float64(imgW), float64(imgH), boxW, boxH)
	x := (boxW - w) / 2
	y := (boxH - h) / 2
	ops := drawXObjectOps("Im0", x, y, w, h)
	dict := types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    types.Array{types.Float(0), types.Float(0), types.Float(round3(boxW)), types.Float(round3(boxH))},
		"Resources": types.Dict{
			"XObject": types.Dict{"Im0": imgRef},
		},
	}
	return d.addStream(dict, ops, true)
}
