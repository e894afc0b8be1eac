// Package files locates enrollment exports on disk and checks that output
// directories are usable before a run writes into them.
//
// Example usage:
//
//	input, err := files.ResolveInput("inbox")   // newest export in inbox/
//	if err != nil {
//	    return err
//	}
//	if err := files.EnsureWritable("datasets"); err != nil {
//	    return err
//	}
package files
