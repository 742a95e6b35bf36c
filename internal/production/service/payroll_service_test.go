package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDurationFromTimeNorm(t *testing.T) {
	// норматив 120 минут на единицу, две единицы
	minutes, err := ComputeDuration(nil, nil, 120, 2)
	require.NoError(t, err)
	assert.Equal(t, 240.0, minutes)
}

func TestComputeDurationFromActualTime(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3*time.Hour + 30*time.Minute)

	// фактическое время важнее норматива
	minutes, err := ComputeDuration(&start, &end, 120, 2)
	require.NoError(t, err)
	assert.Equal(t, 210.0, minutes)
}

func TestComputeDurationOnlyStartFallsBackToNorm(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	minutes, err := ComputeDuration(&start, nil, 90, 1)
	require.NoError(t, err)
	assert.Equal(t, 90.0, minutes)
}

func TestComputeDurationEndBeforeStart(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := ComputeDuration(&start, &end, 120, 1)
	assert.True(t, errors.Is(err, ErrInvalidTimeRange))
}

func TestComputeDurationZeroNorm(t *testing.T) {
	minutes, err := ComputeDuration(nil, nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, minutes)
}
