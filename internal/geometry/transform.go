// Package geometry converts between PDF-space coordinates (the unit the
// backend speaks) and on-screen coordinates, across the two nested scale
// factors of a rendered page image.
package geometry

// Transform composes the two scale legs between PDF space and screen space.
//
// PageScale is rendered-image pixels per PDF unit. It is unknown until the
// page image has been decoded, so a zero value marks a transform that is
// not ready yet. DisplayScale is on-screen units per rendered-image pixel
// and must be re-read on every drag tick because the viewport may have been
// resized in between.
type Transform struct {
	NaturalWidth float64
	PageScale    float64
	DisplayScale float64
}

// NewTransform builds a transform from a decoded page image's natural width,
// the page's width in PDF units, and the current viewport width.
func NewTransform(naturalWidth, pageWidth, viewportWidth float64) Transform {
	t := Transform{NaturalWidth: naturalWidth}
	if naturalWidth > 0 && pageWidth > 0 {
		t.PageScale = naturalWidth / pageWidth
		if viewportWidth > 0 {
			t.DisplayScale = viewportWidth / naturalWidth
		}
	}
	return t
}

// Ready reports whether both scale legs are known. Overlay rendering and
// hit testing are no-ops on a transform that is not ready.
func (t Transform) Ready() bool {
	return t.PageScale > 0 && t.DisplayScale > 0
}

// ScreenToPDF converts an on-screen X coordinate to PDF units. Pointer
// positions arrive in screen units, so both scale legs must be inverted.
func (t Transform) ScreenToPDF(screenX float64) float64 {
	return screenX / (t.DisplayScale * t.PageScale)
}

// PDFToScreen converts a PDF-space X coordinate to on-screen units.
func (t Transform) PDFToScreen(pdfX float64) float64 {
	return pdfX * t.PageScale * t.DisplayScale
}

// PDFToImage converts a PDF-space X coordinate to rendered-image pixels.
// Overlays drawn in image-intrinsic pixels only need this leg; the display
// scaling is applied by the surrounding layout.
func (t Transform) PDFToImage(pdfX float64) float64 {
	return pdfX * t.PageScale
}

// WithViewport returns a copy of the transform with the display leg
// recomputed for a new viewport width. Called on every drag tick so resizes
// between gestures are picked up.
func (t Transform) WithViewport(viewportWidth float64) Transform {
	if t.NaturalWidth <= 0 || viewportWidth <= 0 {
		return t
	}
	out := t
	out.DisplayScale = viewportWidth / t.NaturalWidth
	return out
}
