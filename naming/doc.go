// Package naming discovers input files and resolves where each output is
// written.
//
// Output file names are composed as prefix + input stem + suffix + extension.
// The output directory is either the configured override directory, the
// override directory plus the input's path relative to the directory it was
// discovered under, or the input's own directory.
//
// CheckCollisions must run over the whole batch before any process starts:
// an output that would overwrite any batch input is a fatal error.
package naming
