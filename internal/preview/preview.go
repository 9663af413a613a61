// Package preview draws label polygons over their image so a dataset can be
// inspected by eye.
//
// Polygons are filled on a separate overlay, bounding boxes and class names
// are drawn on the frame, and the two are blended as frame*0.6 + overlay*0.4
// across the whole image.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"segprep/internal/labels"
)

const (
	frameWeight   = 0.6
	overlayWeight = 0.4
	boxWidth      = 2
	labelOffset   = 10
	defaultSize   = 12
	goldenAngle   = 137.508
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Options controls rendering.
type Options struct {
	// Names maps class index to display name; missing entries use the index.
	Names    []string
	FontSize float64
}

// Result describes a rendered preview.
type Result struct {
	Instances int    `json:"instances"`
	Output    string `json:"output"`
}

// ClassColor returns the colour used for a class. Hues step by the golden
// angle so neighbouring classes stay distinguishable.
func ClassColor(class int) color.Color {
	hue := math.Mod(float64(class)*goldenAngle, 360)
	if hue < 0 {
		hue += 360
	}
	return colorful.Hsv(hue, 0.75, 0.95).Clamped()
}

// Render returns img with the instances drawn over it.
func Render(img image.Image, instances []labels.Instance, opts Options) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	size := opts.FontSize
	if size <= 0 {
		size = defaultSize
	}
	title := cases.Title(language.Und)

	frame := gg.NewContextForImage(img)
	overlay := gg.NewContext(w, h)
	frame.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))

	for _, in := range instances {
		if len(in.Points) == 0 {
			continue
		}
		c := ClassColor(in.Class)

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for i, p := range in.Points {
			x, y := p.X*float64(w), p.Y*float64(h)
			if i == 0 {
				overlay.MoveTo(x, y)
			} else {
				overlay.LineTo(x, y)
			}
			minX, minY = math.Min(minX, x), math.Min(minY, y)
			maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		}
		overlay.ClosePath()
		overlay.SetColor(c)
		overlay.Fill()

		frame.SetColor(c)
		frame.SetLineWidth(boxWidth)
		frame.DrawRectangle(minX, minY, maxX-minX, maxY-minY)
		frame.Stroke()

		labelY := math.Max(minY-labelOffset, size)
		frame.DrawString(title.String(className(opts.Names, in.Class)), minX, labelY)
	}

	return blend(frame.Image(), overlay.Image())
}

func className(names []string, class int) string {
	if class >= 0 && class < len(names) && names[class] != "" {
		return names[class]
	}
	return fmt.Sprintf("%d", class)
}

// blend combines frame and overlay channel by channel. Both must share the
// same bounds origin at 0,0.
func blend(frame, overlay image.Image) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	ob := overlay.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			fr, fg, fb, _ := frame.At(b.Min.X+x, b.Min.Y+y).RGBA()
			or, og, obl, _ := overlay.At(ob.Min.X+x, ob.Min.Y+y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: mix(fr, or),
				G: mix(fg, og),
				B: mix(fb, obl),
				A: 0xff,
			})
		}
	}
	return out
}

func mix(f, o uint32) uint8 {
	v := frameWeight*float64(f>>8) + overlayWeight*float64(o>>8)
	return uint8(math.Min(255, math.Round(v)))
}

// Run renders the labels at labelsPath over the image at imagePath and saves
// the result to outputPath in the format implied by its extension.
func Run(imagePath, labelsPath, outputPath string, opts Options) (Result, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return Result{}, fmt.Errorf("open image %s: %w", imagePath, err)
	}
	instances, err := labels.ParseFile(labelsPath)
	if err != nil {
		return Result{}, err
	}
	rendered := Render(img, instances, opts)
	if err := imaging.Save(rendered, outputPath); err != nil {
		return Result{}, fmt.Errorf("save preview %s: %w", outputPath, err)
	}
	return Result{Instances: len(instances), Output: outputPath}, nil
}
