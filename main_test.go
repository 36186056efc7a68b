package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/stats"
)

func TestPrintStatsFormatsCounters(t *testing.T) {
	calc := stats.NewCalculator()
	s := stats.NewStats()
	calc.Accumulate(s, &extract.ActionLog{Actions: []extract.Action{
		{Type: extract.ActTurnBegins, Param1: 0},
		{Type: extract.ActRollDice, Param1: 8},
		{Type: extract.ActGameOver, Param1: 0},
	}})

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	printStats(cmd, s)

	out := buf.String()
	assert.Contains(t, out, "games:    1 (finished 1)\n")
	assert.Contains(t, out, "turns:    1\n")
	assert.Contains(t, out, "   8  1\n")
}
