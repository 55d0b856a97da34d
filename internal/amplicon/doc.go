// Package amplicon places primer-free amplicon windows around variants.
//
// A window is centred on the variant and, if either primer region holds
// another variant position, shifted one base at a time (left before right)
// up to a fixed number of steps. The first conflict-free window wins.
package amplicon
