package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/storage"
)

func sample() *models.MarsData {
	return &models.MarsData{
		NewsTitle:        models.Some("Curiosity climbs Mount Sharp"),
		NewsParagraph:    models.Some("The rover reached a new ridge."),
		FeaturedImageURL: models.Some("https://spaceimages-mars.com/image/featured/mars1.jpg"),
		LastModified:     time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestWriteRecordJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecord(&buf, sample(), "json"))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "Curiosity climbs Mount Sharp", raw["news_title"])
	assert.Nil(t, raw["facts_table"])
	assert.Contains(t, raw, "hemispheres")
}

func TestWriteRecordMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecord(&buf, sample(), "markdown"))

	assert.Contains(t, buf.String(), "Curiosity climbs Mount Sharp")
	assert.Contains(t, buf.String(), "(https://spaceimages-mars.com/image/featured/mars1.jpg)")
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("markdown"))
	assert.NoError(t, validateFormat("html"))
	assert.Error(t, validateFormat("csv"))
}

func TestShowCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "mars.db")
	t.Setenv("REDPLANET_DB_PATH", dbPath)
	t.Setenv("REDPLANET_COLLECTION", "mars")

	st, err := storage.OpenSQLite(dbPath, "mars")
	require.NoError(t, err)
	require.NoError(t, st.Upsert(context.Background(), sample()))
	require.NoError(t, st.Close())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "-f", "markdown"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Curiosity climbs Mount Sharp")
}

func TestShowCommandEmptyStore(t *testing.T) {
	t.Setenv("REDPLANET_DB_PATH", filepath.Join(t.TempDir(), "empty.db"))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "-f", "json"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
