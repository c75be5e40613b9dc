//go:build !unix

package twcmdtest

import "os"

// Without flock, runs sharing an id are not serialized.
func tryLock(*os.File) (bool, error) { return true, nil }

func unlock(*os.File) {}
