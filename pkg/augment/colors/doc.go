// Package colors provides stain- and color-level perturbations for
// histology and fluorescence images.
//
//   - [Desaturation] jitters saturation and brightness in HSV space
//   - [ChannelBleaching] pulls one channel toward its own extreme, simulating
//     a weak stain while the tissue stays intact
//   - [StainShift] circularly offsets one channel, simulating registration
//     error between stains
//   - [Deconvolution] projects RGB onto a stain basis and standardizes it
//
// Every transform is an immutable configuration value. Randomness comes
// from the [random.Source] passed to Invoke, so the same value can be shared
// across data-loading workers.
package colors
