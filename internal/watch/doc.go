// Package watch reloads configuration instances when their backing files
// change on disk.
//
// Files are polled by an argus watcher. A change triggers a reload that is
// retried with exponential backoff, since an editor may still be writing the
// file when the change is first seen. A deleted file resets the instance to
// its defaults.
package watch
