package tool

import (
	"os"

	"github.com/spf13/afero"
)

// IsFileExists reports whether filename exists and is not a directory.
func IsFileExists(fs afero.Fs, filename string) (bool, error) {
	info, err := fs.Stat(filename)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
