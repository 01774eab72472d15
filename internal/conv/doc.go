// Package conv provides bounds-checked integer conversions for values read
// from catalogs and frame headers.
package conv
