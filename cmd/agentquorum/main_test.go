package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentquorum/config"
	"github.com/BaSui01/agentquorum/types"
)

const testPool = `
agents:
  - id: lead
    display_name: Lead Physician
    capabilities: [analysis]
    tier: 1
    specialization_tags: [fever]
    confidence: 0.9
    response: "Rest, fluids and monitoring are recommended for {{query}}."
  - id: nurse
    capabilities: [analysis]
    tier: 2
    confidence: 0.8
    response: "Rest and fluids are recommended, with monitoring."
  - id: pharmacist
    capabilities: [analysis]
    tier: 3
    confidence: 0.7
    response: "Fluids and rest are recommended; monitor temperature."
`

func writePool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPool), 0o600))
	return path
}

func TestRunOnce(t *testing.T) {
	var out bytes.Buffer
	err := runOnce([]string{
		"--pool", writePool(t),
		"--query", "a mild fever",
		"--strategy", "consensus",
		"--timeout", "10s",
	}, &out)
	require.NoError(t, err)

	var result types.CoordinationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "consensus", result.StrategyName)
	assert.Len(t, result.Responses, 3)
	assert.NotEmpty(t, result.FinalResponse.Content)
}

func TestRunOnce_Errors(t *testing.T) {
	pool := writePool(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing pool", []string{"--query", "q"}},
		{"missing query", []string{"--pool", pool}},
		{"unknown strategy", []string{"--pool", pool, "--query", "q", "--strategy", "voting"}},
		{"missing pool file", []string{"--pool", filepath.Join(t.TempDir(), "none.yaml"), "--query", "q"}},
		{"unknown flag", []string{"--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, runOnce(tt.args, &out))
			assert.Zero(t, out.Len())
		})
	}
}

func TestInitLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger := initLogger(config.LogConfig{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(-1))
	}

	logger := initLogger(config.LogConfig{Level: "nonsense"})
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(0))
}

func TestPrintVersionAndUsage(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	assert.Contains(t, out.String(), "AgentQuorum dev")

	out.Reset()
	printUsage(&out)
	assert.Contains(t, out.String(), "agentquorum run")
}
