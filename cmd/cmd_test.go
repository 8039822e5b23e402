package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/solink/cmd/exitcodes"
	"github.com/crytic/solink/compilation/types"
	"github.com/crytic/solink/config"
	"github.com/crytic/solink/linking"
	"github.com/crytic/solink/utils/testutils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mathAddress    = "0x000000000000000000000000000000000000a070"
	stringsAddress = "0x000000000000000000000000000000000000a071"

	// metadataTrailer is the solc 0.8.20 CBOR metadata trailer of the fixtures, with a dummy IPFS hash.
	metadataTrailer = "a2646970667358221220" +
		"abababababababababababababababababababababababababababababababab" +
		"64736f6c63430008140033"
)

// executeCommand runs the root command with the given arguments and stdin, returning what it wrote to stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	resetCommandFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetCommandFlags restores every flag of the command tree to its default, as flag state otherwise leaks between
// executions within one process.
func resetCommandFlags(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
			_ = sliceValue.Replace([]string{})
		} else {
			_ = flag.Value.Set(flag.DefValue)
		}
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCommandFlags(sub)
	}
}

// writeTestArtifact copies the Token fixture to an isolated test directory. Token needs the Math and Strings
// libraries in its init bytecode, and only Math in its deployed bytecode.
func writeTestArtifact(t *testing.T) string {
	return testutils.CopyToTestDirectory(t, "testdata/Token.json")
}

func TestLinkCommand(t *testing.T) {
	artifactPath := writeTestArtifact(t)

	testutils.ExecuteInDirectory(t, artifactPath, func() {
		out, err := executeCommand(t, "", "link", artifactPath, "-l", "Math="+mathAddress, "--library", "contracts/Strings.sol:Strings="+stringsAddress)
		require.NoError(t, err)

		linked := strings.TrimSpace(out)
		assert.Equal(t, "0x6080"+mathAddress[2:]+"5b"+stringsAddress[2:]+"5b"+metadataTrailer, linked)
		assert.Empty(t, types.ParseBytecodeForPlaceholders(linked))
	})
}

func TestLinkCommandFoundryArtifact(t *testing.T) {
	// Vault references Math twice and has no source or contract name, which is taken from the file name
	artifactPath := testutils.CopyToTestDirectory(t, "testdata/Vault.json")

	testutils.ExecuteInDirectory(t, artifactPath, func() {
		out, err := executeCommand(t, "", "link", artifactPath, "-l", "contracts/Math.sol:Math="+mathAddress, "--deployed")
		require.NoError(t, err)

		var output linkOutput
		require.NoError(t, json.Unmarshal([]byte(out), &output))
		assert.Equal(t, "Vault", output.ContractName)
		assert.Equal(t, "0x6080"+mathAddress[2:]+"5b"+mathAddress[2:]+"5b"+metadataTrailer, output.Bytecode)
		assert.Equal(t, "0x6080"+metadataTrailer, output.DeployedBytecode)
	})
}

func TestLinkCommandMissingLibrary(t *testing.T) {
	artifactPath := writeTestArtifact(t)

	testutils.ExecuteInDirectory(t, artifactPath, func() {
		out, err := executeCommand(t, "", "link", artifactPath, "-l", "Math="+mathAddress)
		require.Error(t, err)
		assert.Empty(t, out)

		_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
		assert.Equal(t, exitcodes.ExitCodeLinkError, exitCode)

		var missingErr *linking.MissingLibraryAddressError
		require.ErrorAs(t, err, &missingErr)
		require.Len(t, missingErr.MissingLibraries, 1)
		assert.Equal(t, "Strings", missingErr.MissingLibraries[0].LibraryName)
	})
}

func TestLinkCommandInvalidLibraryFlag(t *testing.T) {
	artifactPath := writeTestArtifact(t)

	testutils.ExecuteInDirectory(t, artifactPath, func() {
		_, err := executeCommand(t, "", "link", artifactPath, "-l", "Math")
		_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
		assert.Equal(t, exitcodes.ExitCodeHandledError, exitCode)
	})
}

func TestLinkCommandWithConfigAndAutolink(t *testing.T) {
	artifactPath := writeTestArtifact(t)
	projectDir := filepath.Dir(artifactPath)

	// The autolink file provides both libraries, the config file overrides Math
	autolinkPath := filepath.Join(projectDir, "combined_solc.link")
	require.NoError(t, os.WriteFile(autolinkPath, []byte(`{
  "deployment_order": ["Math", "Strings"],
  "library_addresses": {
    "Math": "0x1111111111111111111111111111111111111111",
    "Strings": "`+stringsAddress+`"
  }
}`), 0644))

	projectConfig := config.GetDefaultProjectConfig()
	projectConfig.Artifact = artifactPath
	projectConfig.AutolinkFile = autolinkPath
	projectConfig.Libraries["Math"] = mathAddress
	projectConfig.LinkDeployedBytecode = true
	projectConfig.OutputPath = filepath.Join(projectDir, "out", "Token.linked.json")
	projectConfig.CacheDirectory = filepath.Join(projectDir, "cache")
	require.NoError(t, projectConfig.WriteToFile(filepath.Join(projectDir, DefaultProjectConfigFilename)))

	testutils.ExecuteInDirectory(t, projectDir, func() {
		out, err := executeCommand(t, "", "link")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	b, err := os.ReadFile(projectConfig.OutputPath)
	require.NoError(t, err)
	var output linkOutput
	require.NoError(t, json.Unmarshal(b, &output))
	assert.Equal(t, "Token", output.ContractName)
	assert.Equal(t, "0x6080"+mathAddress[2:]+"5b"+stringsAddress[2:]+"5b"+metadataTrailer, output.Bytecode)
	assert.Equal(t, "0x6080"+mathAddress[2:]+"5b"+metadataTrailer, output.DeployedBytecode)

	_, err = os.Stat(filepath.Join(projectConfig.CacheDirectory, ".solink-artifact-hash"))
	assert.NoError(t, err)
}

func TestLibrariesCommand(t *testing.T) {
	artifactPath := writeTestArtifact(t)

	testutils.ExecuteInDirectory(t, artifactPath, func() {
		out, err := executeCommand(t, "", "libraries", artifactPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Token needs 2 library(ies)")
		assert.Contains(t, out, "contracts/Math.sol:Math")
		assert.Contains(t, out, "contracts/Strings.sol:Strings")
		assert.Contains(t, out, types.PlaceholderPattern(types.GenerateLibraryPlaceholder("contracts/Math.sol:Math")))
		assert.NotContains(t, out, "already linked")

		out, err = executeCommand(t, "", "libraries", artifactPath, "--deployed")
		require.NoError(t, err)
		assert.Contains(t, out, "Token needs 1 library(ies)")
		assert.NotContains(t, out, "Strings")
	})
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	testutils.ExecuteInDirectory(t, dir, func() {
		_, err := executeCommand(t, "", "init", "--artifact", "artifacts/Token.json", "--rpc", "http://127.0.0.1:8545")
		require.NoError(t, err)

		projectConfig, err := config.ReadProjectConfigFromFile(filepath.Join(dir, DefaultProjectConfigFilename))
		require.NoError(t, err)
		assert.Equal(t, "artifacts/Token.json", projectConfig.Artifact)
		assert.Equal(t, "http://127.0.0.1:8545", projectConfig.Network.RPCURL)

		// Declining the overwrite prompt leaves the file untouched
		out, err := executeCommand(t, "n\n", "init", "--artifact", "other.json")
		require.NoError(t, err)
		assert.Contains(t, out, "Operation canceled.")
		projectConfig, err = config.ReadProjectConfigFromFile(filepath.Join(dir, DefaultProjectConfigFilename))
		require.NoError(t, err)
		assert.Equal(t, "artifacts/Token.json", projectConfig.Artifact)

		// Forcing skips the prompt
		_, err = executeCommand(t, "", "init", "--artifact", "other.json", "--force")
		require.NoError(t, err)
		projectConfig, err = config.ReadProjectConfigFromFile(filepath.Join(dir, DefaultProjectConfigFilename))
		require.NoError(t, err)
		assert.Equal(t, "other.json", projectConfig.Artifact)
	})
}

// newTestNode starts a JSON-RPC server answering eth_chainId with chainID and succeeding on the extra methods.
func newTestNode(t *testing.T, chainID string, extraMethods ...string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		response := map[string]any{"jsonrpc": "2.0", "id": request.ID}
		switch {
		case request.Method == "eth_chainId":
			response["result"] = chainID
		case contains(extraMethods, request.Method):
			response["result"] = map[string]any{}
		default:
			response["error"] = map[string]any{"code": -32601, "message": "the method " + request.Method + " does not exist/is not available"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)
	return server
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func TestChainCommand(t *testing.T) {
	dir := t.TempDir()

	testutils.ExecuteInDirectory(t, dir, func() {
		node := newTestNode(t, "0xaa36a7")
		out, err := executeCommand(t, "", "chain", "--rpc", node.URL, "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "Sepolia (chain id 11155111, network sepolia)")
		assert.Contains(t, out, "testnet")

		anvil := newTestNode(t, "0x7a69", "anvil_nodeInfo")
		out, err = executeCommand(t, "", "chain", "--rpc", anvil.URL, "--json")
		require.NoError(t, err)
		var detected map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &detected))
		assert.Equal(t, "Foundry", detected["name"])
		assert.Equal(t, true, detected["development"])

		unknown := newTestNode(t, "0x3e7")
		_, err = executeCommand(t, "", "chain", "--rpc", unknown.URL)
		_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
		assert.Equal(t, exitcodes.ExitCodeChainError, exitCode)
		assert.Contains(t, err.Error(), "Multiple networks with chain id 999 found.")

		_, err = executeCommand(t, "", "chain")
		_, exitCode = exitcodes.GetInnerErrorAndExitCode(err)
		assert.Equal(t, exitcodes.ExitCodeHandledError, exitCode)
	})
}

func TestVersionAndCompletionCommands(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "solink version")

	out, err = executeCommand(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "solink")

	_, err = executeCommand(t, "", "completion", "fish")
	assert.Error(t, err)
}

func TestParseLibraryFlag(t *testing.T) {
	name, address, err := parseLibraryFlag("contracts/Math.sol:Math=" + mathAddress)
	require.NoError(t, err)
	assert.Equal(t, "contracts/Math.sol:Math", name)
	assert.Equal(t, mathAddress, address)

	// Empty addresses are kept for the linker to report
	name, address, err = parseLibraryFlag("Math=")
	require.NoError(t, err)
	assert.Equal(t, "Math", name)
	assert.Empty(t, address)

	_, _, err = parseLibraryFlag("=" + mathAddress)
	assert.Error(t, err)
	_, _, err = parseLibraryFlag("Math")
	assert.Error(t, err)
}
