package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/daily-brief/internal/logger"
)

func TestBuildRejectsTypeWithoutBuilder(t *testing.T) {
	_, err := DefaultBuilders().Build(context.Background(), Config{ID: "x", Type: "carrier_pigeon"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no builder for type "carrier_pigeon"`)
}

func TestBuildAllCreatesWebhook(t *testing.T) {
	pubs, err := DefaultBuilders().BuildAll(context.Background(), []Config{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPConfig{URL: "https://example.com", Method: "POST"}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "hook", pubs[0].ID())
	assert.Equal(t, TypeHTTP, pubs[0].Type())
}

func TestBuildAllClosesBuiltPublishersOnFailure(t *testing.T) {
	built := &closingPublisher{stubPublisher: stubPublisher{id: "first", typ: "fake"}}
	builders := Builders{
		"fake": func(context.Context, Config, logger.Logger) (Publisher, error) { return built, nil },
		"broken": func(context.Context, Config, logger.Logger) (Publisher, error) {
			return nil, errors.New("no credentials")
		},
	}

	pubs, err := builders.BuildAll(context.Background(), []Config{
		{ID: "first", Type: "fake"},
		{ID: "second", Type: "broken"},
	}, logger.NopLogger{})
	require.Error(t, err)
	assert.Nil(t, pubs)
	assert.Contains(t, err.Error(), "no credentials")
	assert.True(t, built.closed)
}
