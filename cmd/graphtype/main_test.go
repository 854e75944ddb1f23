package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"-env", filepath.Join(t.TempDir(), "missing.env")}, args...)
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := runCLI(t, "help", "coerce")
	require.NoError(t, err)
	require.Contains(t, out, "coerce FLAGS")

	out, _, err = runCLI(t, "help")
	require.NoError(t, err)
	require.Contains(t, out, "COMMANDS")

	_, _, err = runCLI(t, "help", "serve")
	require.EqualError(t, err, `unknown help topic "serve"`)
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := runCLI(t, "serve")
	require.EqualError(t, err, `unknown command "serve"`)
	require.Contains(t, stderr, "USAGE")

	_, _, err = runCLI(t)
	require.EqualError(t, err, "missing command")
}

func TestCoerceLiteral(t *testing.T) {
	out, _, err := runCLI(t, "coerce", "-type", "[Decimal!]", "-literal", "[1.50, 79228162514264337593543950335]")
	require.NoError(t, err)
	require.Equal(t, "[1.50,79228162514264337593543950335]\n", out)

	out, _, err = runCLI(t, "coerce", "-type", "Decimal", "-literal", `"1.5"`)
	require.NoError(t, err)
	require.Equal(t, "1.5\n", out)

	_, _, err = runCLI(t, "coerce", "-type", "Decimal", "-value", `"1.5"`)
	require.ErrorContains(t, err, "string input is not allowed")
}

func TestCoerceValue(t *testing.T) {
	schemaFile := filepath.Join("testdata", "shop.graphql")
	out, _, err := runCLI(t, "coerce", "-schema", schemaFile, "-type", "PriceFilter!", "-value", `{"max": 2.25}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"min": 0.5, "max": 2.25}`, out)

	_, _, err = runCLI(t, "coerce", "-type", "Decimal!", "-value", "null")
	require.ErrorContains(t, err, "null is not allowed")
}

func TestCoerceFlagValidation(t *testing.T) {
	_, stderr, err := runCLI(t, "coerce", "-type", "Decimal")
	require.EqualError(t, err, "exactly one of -literal and -value is required")
	require.Contains(t, stderr, "coerce FLAGS")

	_, _, err = runCLI(t, "coerce", "-type", "Decimal", "-literal", "1", "-value", "1")
	require.Error(t, err)

	_, _, err = runCLI(t, "coerce", "-literal", "1")
	require.EqualError(t, err, "-type is required")
}

func TestApply(t *testing.T) {
	out, _, err := runCLI(t, "apply",
		"-schema", filepath.Join("testdata", "shop.graphql"),
		"-annotations", filepath.Join("testdata", "shop.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, "\"\"\"\nSomething for sale\n\"\"\"\ntype Article {")
	require.Contains(t, out, `@deprecated(reason: "Use amount")`)
	require.Contains(t, out, `XEU @deprecated(reason: "Replaced by EUR")`)
	require.Contains(t, out, "products(filter: PriceFilter): [Article!]!")
	require.NotContains(t, out, "Product")

	outFile := filepath.Join(t.TempDir(), "out.graphql")
	_, _, err = runCLI(t, "apply",
		"-schema", filepath.Join("testdata", "shop.graphql"),
		"-annotations", filepath.Join("testdata", "shop.yaml"),
		"-out", outFile)
	require.NoError(t, err)
	b, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Equal(t, out, string(b))
}

func TestApplyReportsViolations(t *testing.T) {
	annotations := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(annotations, []byte("version: 1\nannotations:\n  Product.weight:\n    description: x\n"), 0644))
	_, _, err := runCLI(t, "apply", "-schema", filepath.Join("testdata", "shop.graphql"), "-annotations", annotations)
	require.ErrorContains(t, err, "config: unknown field Product.weight")
}

func TestIntrospect(t *testing.T) {
	out, _, err := runCLI(t, "introspect",
		"-schema", filepath.Join("testdata", "shop.graphql"),
		"-annotations", filepath.Join("testdata", "shop.yaml"),
		"-include-deprecated")
	require.NoError(t, err)

	var result struct {
		Schema struct {
			Types []struct {
				Name        string  `json:"name"`
				Description *string `json:"description"`
			} `json:"types"`
		} `json:"__schema"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	var found bool
	for _, typ := range result.Schema.Types {
		if typ.Name == "Article" {
			found = true
			require.Equal(t, "Something for sale", *typ.Description)
		}
	}
	require.True(t, found)

	_, _, err = runCLI(t, "introspect")
	require.EqualError(t, err, "-schema is required")
}

func TestDebugLogging(t *testing.T) {
	_, stderr, err := runCLI(t, "-log.level", "debug", "coerce", "-type", "Decimal", "-literal", "1")
	require.NoError(t, err)
	require.Contains(t, stderr, "msg=\"schema built\"")
	require.Contains(t, stderr, "msg=coerced")

	_, _, err = runCLI(t, "-log.level", "loud", "help")
	require.ErrorContains(t, err, "-log.level")
}

func TestEnvFileSuppliesDefaults(t *testing.T) {
	t.Setenv(envOTelService, "restored")
	require.NoError(t, os.Unsetenv(envOTelService))
	env := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(env, []byte(envOTelService+"=from-env\n"), 0644))
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-env", env, "help"}, &out, &errOut))
	require.Equal(t, "from-env", os.Getenv(envOTelService))
}
