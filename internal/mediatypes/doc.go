// Package mediatypes holds the image file types the culler recognises and
// the MIME types it serves them with.
//
// It has no dependencies beyond the standard library so the catalog, the
// resize engine and the handlers can all import it without cycles.
//
//	if mediatypes.IsImageFile(entry.Name()) {
//	    // enumerate it
//	}
//
// Two lookups exist because the same format arrives under two names: file
// extensions during enumeration (".jpg") and decoder format names after
// decoding ("jpeg").
package mediatypes
