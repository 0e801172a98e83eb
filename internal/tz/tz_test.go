package tz

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CachesLocation(t *testing.T) {
	first, err := Load("Asia/Taipei")
	require.NoError(t, err)
	second, err := Load("Asia/Taipei")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Asia/Taipei", first.String())
}

func TestLoad_UnknownZone(t *testing.T) {
	_, err := Load("Nowhere/Special")
	assert.Error(t, err)

	assert.Equal(t, time.UTC, LoadOr("Nowhere/Special", time.UTC))
	assert.Equal(t, "Europe/Paris", LoadOr("Europe/Paris", time.UTC).String())
}
