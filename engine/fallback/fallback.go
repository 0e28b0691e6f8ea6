// Package fallback renders a static field image on the CPU for hosts where
// no usable GPU context exists. The output is a stand-in background, not an
// animation: one frozen frame of the same lattice field the shader draws,
// evaluated through the reference sampler so the two paths cannot drift.
package fallback

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tessera-go/engine/field"
	"golang.org/x/image/draw"
)

// stillConfig holds the resolved render settings for one Still call.
type stillConfig struct {
	workers int
	quality float64
	time    float64
	scroll  float64
	role    field.Role
}

// StillOption is a functional option for configuring a Still render.
type StillOption func(c *stillConfig)

// WithWorkers sets the number of pool workers used to fill pixel rows.
// Defaults to NumCPU-1 (at least 1). Values below 1 keep the default.
//
// Parameters:
//   - workers: worker count for the row fill
//
// Returns:
//   - StillOption: option function to apply
func WithWorkers(workers int) StillOption {
	return func(c *stillConfig) {
		if workers >= 1 {
			c.workers = workers
		}
	}
}

// WithQuality sets the internal resolution scale in (0, 1]. Values at or
// below zero or above one are treated as full quality. At reduced quality
// the field is evaluated at a smaller size and upscaled with Catmull-Rom
// interpolation to the requested dimensions.
//
// Parameters:
//   - quality: resolution scale factor
//
// Returns:
//   - StillOption: option function to apply
func WithQuality(quality float64) StillOption {
	return func(c *stillConfig) {
		c.quality = quality
	}
}

// WithTime sets the frozen animation clock, in seconds. Defaults to 0.
// Different times yield different frozen frames of the same field.
//
// Parameters:
//   - t: animation time to evaluate at
//
// Returns:
//   - StillOption: option function to apply
func WithTime(t float64) StillOption {
	return func(c *stillConfig) {
		c.time = t
	}
}

// WithScroll sets the accumulated scroll value, in viewport units, so the
// still matches the phase a live surface would show at that position.
//
// Parameters:
//   - scroll: virtual scroll position
//
// Returns:
//   - StillOption: option function to apply
func WithScroll(scroll float64) StillOption {
	return func(c *stillConfig) {
		c.scroll = scroll
	}
}

// WithRole selects the layer role whose intensity and density profile the
// still uses. Defaults to the background role.
//
// Parameters:
//   - role: the layer role to render as
//
// Returns:
//   - StillOption: option function to apply
func WithRole(role field.Role) StillOption {
	return func(c *stillConfig) {
		c.role = role
	}
}

// Still renders one frame of the field on the CPU and returns it as an
// opaque RGBA image of the requested size. Rows are filled in parallel by a
// worker pool; because every pixel is a pure function of its coordinate and
// the inputs, the result is identical for any worker count and across runs.
//
// Parameters:
//   - width: output width in pixels
//   - height: output height in pixels
//   - vec: the field vector to render
//   - options: functional options for quality, workers, time, scroll, role
//
// Returns:
//   - *image.RGBA: the rendered image
//   - error: non-nil if the requested size is not positive
func Still(width, height int, vec field.Vector, options ...StillOption) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("fallback: invalid still size %dx%d", width, height)
	}

	cfg := stillConfig{
		workers: max(runtime.NumCPU()-1, 1),
		quality: 1,
		role:    field.RoleBackground,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	scale := cfg.quality
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	iw := max(int(math.Round(float64(width)*scale)), 1)
	ih := max(int(math.Round(float64(height)*scale)), 1)

	in := field.SampleInput{
		Vector:  vec,
		Time:    cfg.time,
		Pointer: [2]float64{0.5, 0.5},
		Scroll:  cfg.scroll,
		Aspect:  float64(iw) / float64(ih),
		Role:    cfg.role,
	}

	img := image.NewRGBA(image.Rect(0, 0, iw, ih))
	fillRows(img, in, cfg.workers)

	if iw == width && ih == height {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// Neutral renders a still of the default field vector. It is the image shown
// when GPU acquisition fails and no section state exists yet.
//
// Parameters:
//   - width: output width in pixels
//   - height: output height in pixels
//   - options: functional options for quality, workers, time, scroll, role
//
// Returns:
//   - *image.RGBA: the rendered image
//   - error: non-nil if the requested size is not positive
func Neutral(width, height int, options ...StillOption) (*image.RGBA, error) {
	return Still(width, height, field.Default(), options...)
}

// fillRows evaluates every pixel of img, splitting the rows into contiguous
// bands with one pool task per band. Bands write disjoint rows, so no
// synchronization beyond the completion barrier is needed and scheduling
// order cannot affect the output.
func fillRows(img *image.RGBA, in field.SampleInput, workers int) {
	ih := img.Rect.Dy()
	bands := min(workers, ih)
	rowsPer := (ih + bands - 1) / bands

	pool := worker.NewDynamicWorkerPool(workers, bands+1, time.Second)
	var wg sync.WaitGroup
	for b := 0; b < bands; b++ {
		y0 := b * rowsPer
		y1 := min(y0+rowsPer, ih)
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: b,
			Do: func() (any, error) {
				defer wg.Done()
				fillBand(img, in, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// fillBand fills rows [y0, y1) of img. Coordinates sample at pixel centers,
// matching the fragment shader's position convention.
func fillBand(img *image.RGBA, in field.SampleInput, y0, y1 int) {
	iw := img.Rect.Dx()
	ih := img.Rect.Dy()
	for y := y0; y < y1; y++ {
		row := img.Pix[img.PixOffset(0, y):]
		for x := 0; x < iw; x++ {
			uv := [2]float64{
				(float64(x) + 0.5) / float64(iw),
				(float64(y) + 0.5) / float64(ih),
			}
			col := field.Sample(uv, in)
			o := x * 4
			row[o+0] = toByte(col[0])
			row[o+1] = toByte(col[1])
			row[o+2] = toByte(col[2])
			row[o+3] = 0xff
		}
	}
}

func toByte(c float64) uint8 {
	return uint8(math.Round(c * 255))
}
