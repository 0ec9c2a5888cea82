package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandbox_AllTestsPass(t *testing.T) {
	s := NewSandbox(DefaultSandboxConfig())
	program := `print(int(input()) * 2)`
	tests := []TestCase{
		{Name: "doubles-3", Input: "3\n", Want: "6"},
		{Name: "doubles-10", Input: "10\n", Want: "20"},
	}
	result, err := s.Run(context.Background(), program, tests)
	require.NoError(t, err)
	assert.True(t, result.AllPass)
	for _, o := range result.Outcomes {
		assert.True(t, o.Passed)
	}
}

func TestSandbox_ReportsFailingTest(t *testing.T) {
	s := NewSandbox(DefaultSandboxConfig())
	program := `print(1)`
	tests := []TestCase{{Name: "always-wrong", Input: "", Want: "2"}}
	result, err := s.Run(context.Background(), program, tests)
	require.NoError(t, err)
	assert.False(t, result.AllPass)
	assert.False(t, result.Outcomes[0].Passed)
	assert.Equal(t, "1", result.Outcomes[0].Got)
}

func TestSandbox_TimesOutOnInfiniteLoop(t *testing.T) {
	cfg := DefaultSandboxConfig()
	cfg.WallClock = 300 * time.Millisecond
	s := NewSandbox(cfg)
	program := `
while True:
    pass
`
	tests := []TestCase{{Name: "hangs", Input: "", Want: "never"}}
	result, err := s.Run(context.Background(), program, tests)
	require.NoError(t, err)
	assert.True(t, result.Outcomes[0].TimedOut)
	assert.False(t, result.Outcomes[0].Passed)
}

func TestSandbox_RejectsEmptyTestList(t *testing.T) {
	s := NewSandbox(DefaultSandboxConfig())
	_, err := s.Run(context.Background(), "print(1)", nil)
	require.Error(t, err)
}

func TestSandbox_NoNetworkEnvLeaksIntoChild(t *testing.T) {
	env := isolatedEnv()
	for _, kv := range env {
		assert.NotContains(t, kv, "AWS_SECRET_ACCESS_KEY=")
	}
}
