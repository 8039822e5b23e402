package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CreateFile will create a file at the given path and file name combination. If the path is the empty string, the
// file will be created in the current working directory
func CreateFile(path string, fileName string) (*os.File, error) {
	// By default, the path will be the name of the file
	filePath := fileName

	// Check to see if the file needs to be created in another directory or the working directory
	if path != "" {
		// Make the directory, if it does not exist already
		err := MakeDirectory(path)
		if err != nil {
			return nil, err
		}
		// Since the path is non-empty, concatenate the path with the name of the file
		filePath = filepath.Join(path, fileName)
	}

	// Create the file
	file, err := os.Create(filePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return file, nil
}

// WriteFile writes data to the file at filePath, creating any parent directories which do not exist.
func WriteFile(filePath string, data []byte) error {
	file, err := CreateFile(filepath.Dir(filePath), filepath.Base(filePath))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write(data)
	return errors.WithStack(err)
}

// CopyFile copies a file from a source path to a destination path. File permissions are retained. Returns an error
// if one occurs.
func CopyFile(sourcePath string, targetPath string) error {
	// Obtain file info for the source file
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}

	// If the path refers to a directory, return an error
	if sourceInfo.IsDir() {
		return fmt.Errorf("could not copy file from '%s' to '%s' because the source path refers to a directory", sourcePath, targetPath)
	}

	// Ensure the existence of the directory we wish to copy to.
	err = MakeDirectory(filepath.Dir(targetPath))
	if err != nil {
		return err
	}

	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	targetFile, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	defer targetFile.Close()

	// Copy contents from one file handle to the other
	_, err = io.Copy(targetFile, sourceFile)
	if err != nil {
		return err
	}

	// Modify the permissions of the file
	return os.Chmod(targetPath, sourceInfo.Mode())
}

// GetFileNameWithoutExtension obtains a filename without the extension. This does not contain any preceding directory
// paths.
func GetFileNameWithoutExtension(filePath string) string {
	base := filepath.Base(filePath)
	return base[:len(base)-len(filepath.Ext(base))]
}

// MakeDirectory creates a directory at the given path, including any parent directories which do not exist.
// Returns an error, if one occurred.
func MakeDirectory(dirToMake string) error {
	dirInfo, err := os.Stat(dirToMake)
	if err != nil {
		// Directory does not exist, as expected.
		if os.IsNotExist(err) {
			return errors.WithStack(os.MkdirAll(dirToMake, 0755))
		}
		// Some other sort of error, throw it
		return errors.WithStack(err)
	}

	// dirToMake is a file, throw an error accordingly
	if !dirInfo.IsDir() {
		return errors.Errorf("there is a file with the same name as %s", dirToMake)
	}

	// Directory already exists, good to go
	return nil
}
