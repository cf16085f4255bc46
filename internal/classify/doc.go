// Package classify tags a file with the content kinds it plausibly holds.
//
// Classification runs an ordered chain of byte-signature sniffers over the
// head of the file, falls back to MIME detection, and finally to the file
// extension, so the returned set is never empty. The package also exposes the
// inspections stage predicates need: animation, self-extracting executables
// and embedded EXIF data.
package classify
