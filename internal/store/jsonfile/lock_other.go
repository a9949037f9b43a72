//go:build !unix

package jsonfile

import "os"

// lock creates the lock file. Cross-process locking is only provided on unix;
// in-process writers are still serialized by CommentStore.
func lock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}
