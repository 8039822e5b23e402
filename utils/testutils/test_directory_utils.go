package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/solink/utils"
	"github.com/stretchr/testify/require"
)

// CopyToTestDirectory copies the file at filePath (relative to the working directory) to an ephemeral directory used
// for unit tests, returning its new absolute path.
func CopyToTestDirectory(t *testing.T, filePath string) string {
	// Construct our file path relative to our working directory
	cwd, err := os.Getwd()
	require.NoError(t, err)
	sourcePath := filepath.Join(cwd, filePath)

	// Obtain an isolated test directory path and copy our source there
	targetPath := filepath.Join(t.TempDir(), "solinkTest", filepath.Base(sourcePath))
	err = utils.CopyFile(sourcePath, targetPath)
	require.NoError(t, err)

	// Get a normalized absolute path
	targetPath, err = filepath.Abs(targetPath)
	require.NoError(t, err)
	return targetPath
}

// ExecuteInDirectory executes the given method in a given test directory. It changes the current working directory
// to the directory specified, runs the provided method, then restores the working directory. This wraps tests so
// any file artifacts generated do not end up in the codebase directories.
func ExecuteInDirectory(t *testing.T, testPath string, method func()) {
	// Backup our old working directory
	cwd, err := os.Getwd()
	require.NoError(t, err)

	// Check if the test path refers to a file or directory, as we'll want to change our working directory to a
	// directory path.
	testPathInfo, err := os.Stat(testPath)
	require.NoError(t, err)

	testDirectory := testPath
	if !testPathInfo.IsDir() {
		testDirectory = filepath.Dir(testPath)
	}

	err = os.Chdir(testDirectory)
	require.NoError(t, err)

	// Restore our working directory even if the method fails the test
	defer func() {
		require.NoError(t, os.Chdir(cwd))
	}()
	method()
}
