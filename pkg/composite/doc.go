// Package composite is the C7a pipeline: given a recipe name, a
// satellite, a sector and a capture time, it resolves each recipe band
// to its nearest-in-time stored frame, loads the rendered grayscale PNG
// for each, resizes to a common shape by bilinear interpolation over
// normalized [0,1] float samples, stacks up to three bands into an RGB
// PNG, and records the result on a Composite row (§4.7).
package composite
