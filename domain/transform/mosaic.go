// Package transform implements the per-frame region redaction: a Gaussian
// blur over the region followed by a pixelation pass. The double pass is
// intentional; it is stronger redaction than either alone.
package transform

import (
	"image"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"

	"vidredact/domain/model"
	pkgerrors "vidredact/pkg/errors"
)

// pixelDivisor is the down-sampling factor for the pixelation pass.
const pixelDivisor = 4

// Apply redacts the region of one RGBA frame in place and returns the same
// buffer. Only pixels inside the region are written. The frame layout is
// width*height*4 bytes, row-major RGBA.
//
// The region is validated against the frame bounds on every call; a
// violation returns a RegionError carrying the frame dimensions and leaves
// the frame untouched. Apply has no memory across frames, so it is safe to
// call concurrently on distinct buffers.
func Apply(frame []byte, width, height int, region model.Region, blur model.BlurParams) ([]byte, error) {
	if !region.FitsWithin(width, height) {
		return nil, pkgerrors.NewRegionError(
			region.X, region.Y, region.Width, region.Height, width, height)
	}
	if len(frame) < width*height*4 {
		return nil, pkgerrors.NewValidationError("frame", len(frame),
			"frame buffer shorter than width*height*4")
	}

	img := &image.RGBA{
		Pix:    frame,
		Stride: 4 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	sub := img.SubImage(rect)

	// Pass 1: Gaussian blur of the sub-region. Sigma 0 derives the value
	// from the kernel size (OpenCV convention).
	blurred := image.NewRGBA(image.Rect(0, 0, region.Width, region.Height))
	g := gift.New(gift.GaussianBlur(float32(blur.EffectiveSigma())))
	g.Draw(blurred, sub)

	// Pass 2: pixelate. Down-sample the blurred region to a quarter of its
	// width and height, then nearest-neighbor up-sample back over the
	// original region.
	dw := max(1, region.Width/pixelDivisor)
	dh := max(1, region.Height/pixelDivisor)
	down := image.NewRGBA(image.Rect(0, 0, dw, dh))
	gift.New(gift.Resize(dw, dh, gift.LinearResampling)).Draw(down, blurred)

	xdraw.NearestNeighbor.Scale(img, rect, down, down.Bounds(), xdraw.Src, nil)

	return frame, nil
}
