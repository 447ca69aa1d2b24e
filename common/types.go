// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned by DecodeTexture when the decoded image has no pixels.
var ErrEmptyImage = errors.New("image has zero width or height")

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// Aspect returns Width / Height, or 1 for an empty texture.
func (t TextureStagingData) Aspect() float32 {
	if t.Height == 0 {
		return 1
	}
	return float32(t.Width) / float32(t.Height)
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero fields fall back to the renderer defaults.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                 float32
	MaxAnisotropy                            uint16
}

// DecodeTexture decodes an encoded image (PNG, JPEG, GIF or WebP) into RGBA staging data.
// Images whose longest edge exceeds maxDimension are downscaled with bilinear filtering so
// they fit inside the GPU texture limits. A maxDimension <= 0 disables downscaling.
//
// Parameters:
//   - data: the encoded image bytes
//   - maxDimension: the largest allowed width or height in pixels
//
// Returns:
//   - TextureStagingData: the decoded pixels and their dimensions
//   - error: error if decoding fails or the image is empty
func DecodeTexture(data []byte, maxDimension int) (TextureStagingData, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return TextureStagingData{}, ErrEmptyImage
	}

	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		if width >= height {
			height = max(1, height*maxDimension/width)
			width = maxDimension
		} else {
			width = max(1, width*maxDimension/height)
			height = maxDimension
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), src, bounds, draw.Src, nil)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}
