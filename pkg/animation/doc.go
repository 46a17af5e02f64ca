// Package animation is the C7b pipeline: it resolves a set of frames
// (explicit id list, a catalog query, a "recent N hours" window, or a
// collection), applies an optional crop and a scale factor, arranges
// them per a loop style, and encodes the sequence into an mp4 or gif via
// an external video tool (§4.7).
package animation
