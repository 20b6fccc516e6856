package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAccessors(t *testing.T) {
	v, ok := Some("x").Get()
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = None[string]().Get()
	assert.False(t, ok)

	assert.Equal(t, "fallback", None[string]().Or("fallback"))
	assert.Equal(t, "", Some("").Or("fallback"), "a present empty value is still present")
}

func TestMarsDataJSONAbsence(t *testing.T) {
	data := MarsData{
		NewsTitle:    Some("Title"),
		LastModified: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"news_title": "Title",
		"news_paragraph": null,
		"featured_image_url": null,
		"facts_table": null,
		"last_modified": "2026-10-01T00:00:00Z",
		"hemispheres": null
	}`, string(raw))

	var back MarsData
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, data, back)
}

func TestScrapeErrorWrapping(t *testing.T) {
	inner := assert.AnError
	err := NewScrapeError(ErrCodeNavigation, "navigation failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, &ErrorDetail{Code: ErrCodeNavigation, Message: "navigation failed"}, err.ToDetail())
	assert.Contains(t, err.Error(), ErrCodeNavigation)
}
