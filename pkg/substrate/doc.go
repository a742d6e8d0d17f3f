// Package substrate provides the numeric primitives the transforms build on:
// colorspace conversion, resampling, rotation, smoothing and stain
// separation.
//
// The augmentation packages treat these as an external collaborator. They
// call the functions here and never reimplement the math themselves, so a
// faster backend can replace this package without touching transform logic.
//
// # Backends
//
//   - RGB↔HSV: github.com/lucasb-eyer/go-colorful
//   - Resize and rotate: golang.org/x/image/draw (bilinear, affine transforms)
//   - Stain basis: gonum.org/v1/gonum/mat
//   - Gaussian and box smoothing: separable float64 passes with nearest-edge
//     extension
//
// Every function returns a newly allocated image and leaves its input
// untouched.
package substrate
