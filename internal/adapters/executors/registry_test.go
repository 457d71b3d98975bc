package executors_test

import (
	"testing"

	"github.com/farm-framework/forge/internal/adapters/executors"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CoversEveryKind(t *testing.T) {
	registry := executors.NewRegistry(executors.NewRunner(quietLogger(t)), quietLogger(t))

	kinds := []domain.ExecutorKind{
		domain.KindFrontend,
		domain.KindBackend,
		domain.KindAIModels,
		domain.KindContainer,
	}
	for _, kind := range kinds {
		executor, err := registry.For(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, executor.Kind())
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	registry := executors.Registry{}
	_, err := registry.For(domain.KindFrontend)
	assert.ErrorIs(t, err, domain.ErrUnknownExecutor)
}
