package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-composer/internal/cli"
)

const catalogYAML = `
products:
  - id: burger
    name: Burger
    price: 1000
    store: store-1
    varieties:
      - name: Double
        priceDifference: 400
    options:
      - name: Bun
        required: true
        choices:
          - id: brioche
            name: Brioche
            additionalCost: 50
      - name: Extras
        choices:
          - id: cheese
            name: Cheese
            additionalCost: 50
          - Pickles
        extraPrices:
          Pickles: 20
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0644))
	return path
}

func runQuote(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"quote"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestQuoteCommand_Text(t *testing.T) {
	out, err := runQuote(t,
		"--catalog", writeCatalog(t),
		"--product", "burger",
		"--quantity", "2",
		"--variety", "Double",
		"--required", "Bun=brioche",
		"--optional", "Extras=cheese=2",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Burger (burger)")
	assert.Contains(t, out, "markup:        x1")
	assert.Contains(t, out, "Bun: Brioche x1")
	assert.Contains(t, out, "Extras: Cheese x2")
	assert.Contains(t, out, "amount: 2950")
}

func TestQuoteCommand_JSONWithMarkup(t *testing.T) {
	out, err := runQuote(t,
		"--catalog", writeCatalog(t),
		"--product", "burger",
		"--required", "Bun=brioche:2",
		"--optional", "Extras=Pickles=1",
		"--markup", "1.1",
		"--json",
	)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result), "output should be valid JSON")
	// 1000*1.1 + 50*2 + 20
	assert.Equal(t, float64(1220), result["lineAmount"])
	assert.Len(t, result["orderoptions"], 2)
}

func TestQuoteCommand_Errors(t *testing.T) {
	path := writeCatalog(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown product", args: []string{"--catalog", path, "--product", "pizza"}, wantErr: `product "pizza" not found`},
		{name: "bad required pick", args: []string{"--catalog", path, "--product", "burger", "--required", "Bun"}, wantErr: "invalid required pick"},
		{name: "bad optional pick", args: []string{"--catalog", path, "--product", "burger", "--optional", "Extras=cheese"}, wantErr: "invalid optional pick"},
		{name: "missing catalog", args: []string{"--catalog", filepath.Join(t.TempDir(), "none.yaml"), "--product", "burger"}, wantErr: "reading"},
		{name: "missing flags", args: []string{}, wantErr: "required flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runQuote(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
