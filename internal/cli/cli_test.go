package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/internal/config"
	"github.com/aretw0/tela/internal/logging"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "translate"}
	AddConfigFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigFromFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg domain.Config)
	}{
		{"no flags keeps base", nil, func(t *testing.T, cfg domain.Config) {
			assert.Equal(t, domain.DefaultConfig(), cfg)
		}},
		{"preset", []string{"-a", "ltl3ba"}, func(t *testing.T, cfg domain.Config) {
			assert.True(t, cfg.SingleInitState)
			assert.False(t, cfg.TryNegation)
		}},
		{"explicit flag wins over preset", []string{"--act-like=ltl3ba", "--negation=true"}, func(t *testing.T, cfg domain.Config) {
			assert.True(t, cfg.TryNegation)
		}},
		{"levels", []string{"-e", "0", "-F", "3", "-G", "1", "--max-marks", "8"}, func(t *testing.T, cfg domain.Config) {
			assert.Equal(t, 0, cfg.EqLevel)
			assert.Equal(t, 3, cfg.UMergeLevel)
			assert.Equal(t, 1, cfg.GMergeLevel)
			assert.Equal(t, 8, cfg.MaxMarks)
		}},
		{"switches", []string{"-d=false", "-t=false", "-X", "-i"}, func(t *testing.T, cfg domain.Config) {
			assert.False(t, cfg.DisjMerging)
			assert.False(t, cfg.FinToInf)
			assert.True(t, cfg.NextSingleSucc)
			assert.True(t, cfg.SingleInitState)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ConfigFromFlags(newCommand(t, tt.args...), domain.DefaultConfig())
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfigFromFlags_Invalid(t *testing.T) {
	_, err := ConfigFromFlags(newCommand(t, "-a", "spot"), domain.DefaultConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = ConfigFromFlags(newCommand(t, "-e", "5"), domain.DefaultConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRunTranslate(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		opts TranslateOptions
		want string
	}{
		{"hoa", TranslateOptions{Formula: "a U b"}, "Acceptance: 1 Inf(0)"},
		{"dot both", TranslateOptions{Formula: "a U b", Format: domain.FormatDOT, Phase: domain.PhaseBoth}, "digraph"},
		{"summary", TranslateOptions{Formula: "a U b", Format: domain.FormatSummary}, "| NA | 2 |"},
		{"pretty summary", TranslateOptions{Formula: "a U b", Format: domain.FormatSummary, Pretty: true}, "deterministic"},
		{"mergeable until", TranslateOptions{Formula: "(a | b) U G a", Mergeable: 1}, "true\n"},
		{"mergeable until absent", TranslateOptions{Formula: "a U b", Mergeable: 1}, "false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RunTranslate(ctx, tr, tt.opts, &buf))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	err = RunTranslate(ctx, tr, TranslateOptions{Formula: "a", Mergeable: 3}, &buf)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitTooManyMarks, ExitCode(fmt.Errorf("build: %w", domain.ErrTooManyMarks)))
}

func TestNewStack(t *testing.T) {
	var seen []domain.EventType
	stack, err := NewStack(config.Default(), domain.DefaultConfig(), logging.NewNop(), func(e domain.Event) {
		seen = append(seen, e.Type)
	})
	require.NoError(t, err)
	defer stack.Translator.Close()

	ctx := context.Background()
	first, err := stack.Translator.Render(ctx, domain.Request{Formula: "(a | b) U G a"})
	require.NoError(t, err)
	second, err := stack.Translator.Render(ctx, domain.Request{Formula: "(a | b) U G a"})
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached, "the in-memory cache is wired")
	assert.Contains(t, seen, domain.EventMergeableUntil)

	count, err := testutil.GatherAndCount(stack.Registry, "tela_translations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, strings.HasPrefix(second.Output, "HOA: v1"))
}
