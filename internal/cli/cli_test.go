package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/routecost/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "error %v is not an ExitError", err)
	return exitErr.Code
}

func routeDir(t *testing.T) string {
	t.Helper()
	return testutil.WriteFiles(t, map[string]string{"routes/main.hcl": testutil.ScenarioHCL})
}

func TestExecute_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {"calc", "--help"}, {"prices"}} {
		out, _, err := execute(t, args...)
		require.NoError(t, err, args)
		assert.Contains(t, out, "Usage:", args)
	}
}

func TestExecute_Calc(t *testing.T) {
	dir := routeDir(t)

	out, _, err := execute(t, "calc", filepath.Join(dir, "routes"), "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "R,raw,2,50,10,500,1")

	out, _, err = execute(t, "calc", filepath.Join(dir, "routes"), "-o", "csv", "-q", "1", "--set", "R.price=20")
	require.NoError(t, err)
	assert.Contains(t, out, "T,target,0,1,100,100,0")
}

func TestExecute_Scan(t *testing.T) {
	dir := routeDir(t)

	out, _, err := execute(t, "scan", filepath.Join(dir, "routes"), "--vary", "R.price", "--from", "0", "--to", "20", "--points", "3", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "R.price,unit_cost\n0,0\n10,50\n20,100\n", out)

	out, _, err = execute(t, "scan", filepath.Join(dir, "routes"), "--vary", "T.yield", "--values", "1,0.5", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "T.yield,unit_cost\n1,40\n0.5,80\n", out)

	// A priced intermediate is bought instead of made.
	out, _, err = execute(t, "scan", filepath.Join(dir, "routes"), "--vary", "I.price", "--values", "8,16", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "I.price,unit_cost\n8,10\n16,20\n", out)
}

func TestExecute_Prices(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"q.toml": "[[material]]\nname = \"R\"\nprice = 11\n",
	})
	db := filepath.Join(dir, "prices.db")

	out, _, err := execute(t, "prices", "import", filepath.Join(dir, "q.toml"), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 prices")

	t.Setenv(envDB, db)
	out, _, err = execute(t, "prices", "list", "-o", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "compound,price,updated_at\nR,11,"), out)
}

func TestExecute_UsageErrors(t *testing.T) {
	dir := routeDir(t)
	routes := filepath.Join(dir, "routes")

	testCases := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bogus"}},
		{"unknown flag", []string{"calc", routes, "--nope"}},
		{"missing route path", []string{"calc"}},
		{"bad output format", []string{"calc", routes, "-o", "xml"}},
		{"bad log level", []string{"calc", routes, "--log-level", "loud"}},
		{"bad override", []string{"calc", routes, "--set", "R.price"}},
		{"negative quantity", []string{"calc", routes, "-q", "-3"}},
		{"zero quantity", []string{"calc", routes, "-q", "0"}},
		{"scan without vary", []string{"scan", routes, "--values", "1"}},
		{"scan without values", []string{"scan", routes, "--vary", "R.price"}},
		{"scan with both value forms", []string{"scan", routes, "--vary", "R.price", "--values", "1", "--points", "2"}},
		{"scan with values and range start", []string{"scan", routes, "--vary", "R.price", "--values", "1", "--from", "2"}},
		{"scan with values and range end", []string{"scan", routes, "--vary", "R.price", "--values", "1", "--to", "2"}},
		{"prices list with args", []string{"prices", "list", "extra"}},
		{"missing explicit env file", []string{"calc", routes, "--env-file", filepath.Join(dir, "missing.env")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			assert.Equal(t, ExitUsage, exitCode(t, err), "error: %v", err)
		})
	}
}

func TestExecute_RuntimeErrors(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"routes/main.hcl": strings.Replace(testutil.ScenarioHCL, "price = 10", "", 1),
	})

	_, _, err := execute(t, "calc", filepath.Join(dir, "routes"))
	assert.Equal(t, ExitRuntime, exitCode(t, err))
	assert.Contains(t, err.Error(), `"R"`)

	_, _, err = execute(t, "prices", "list")
	assert.Equal(t, ExitRuntime, exitCode(t, err))
}

func TestExecute_EnvironmentDefaults(t *testing.T) {
	dir := routeDir(t)
	routes := filepath.Join(dir, "routes")

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv(envFormat, "csv")
		out, _, err := execute(t, "calc", routes)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "compound,kind"), out)

		out, _, err = execute(t, "calc", routes, "-o", "json")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "{"), "flags win over the environment")
	})

	t.Run("env file", func(t *testing.T) {
		envDir := testutil.WriteFiles(t, map[string]string{
			"routecost.env": "ROUTECOST_LOG_LEVEL=debug\nROUTECOST_LOG_FORMAT=json\n",
		})
		// godotenv never overrides variables that are already set.
		for _, key := range []string{envLogLevel, envLogFormat} {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}

		_, logs, err := execute(t, "calc", routes, "--env-file", filepath.Join(envDir, "routecost.env"))
		require.NoError(t, err)
		assert.Contains(t, logs, `"level":"DEBUG"`)
	})

	t.Run("price lists from the environment", func(t *testing.T) {
		prices := testutil.WriteFiles(t, map[string]string{"p.toml": "[[material]]\nname = \"R\"\nprice = 20\n"})
		t.Setenv(envPrices, filepath.Join(prices, "p.toml"))
		out, _, err := execute(t, "calc", routes, "-o", "csv")
		require.NoError(t, err)
		assert.Contains(t, out, "T,target,0,10,100,1000,0")
	})
}
