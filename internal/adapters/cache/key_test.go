package cache_test

import (
	"errors"
	"testing"

	"github.com/farm-framework/forge/internal/adapters/cache"
	"github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testTask(name string) *domain.BuildTask {
	return &domain.BuildTask{
		Name: name,
		Kind: domain.KindBackend,
		Config: domain.TaskConfig{
			Environment: "development",
			SourceDir:   "backend",
			OutputDir:   "build",
			Settings:    map[string]string{"FORGE_PROJECT_NAME": "demo"},
		},
	}
}

func TestKeyer_Deterministic(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	keyer := cache.NewKeyer(snap)

	first, err := keyer.Key(testTask("backend"))
	require.NoError(t, err)
	second, err := keyer.Key(testTask("backend"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
}

func TestKeyer_NameDoesNotAffectKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	keyer := cache.NewKeyer(snap)

	a, err := keyer.Key(testTask("backend"))
	require.NoError(t, err)
	b, err := keyer.Key(testTask("backend-renamed"))
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical config and inputs must share a key regardless of label")
}

func TestKeyer_ConfigChangesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	keyer := cache.NewKeyer(snap)

	base, err := keyer.Key(testTask("backend"))
	require.NoError(t, err)

	changed := testTask("backend")
	changed.Config.Environment = "production"
	other, err := keyer.Key(changed)
	require.NoError(t, err)

	assert.NotEqual(t, base, other)
}

func TestKeyer_KindChangesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	keyer := cache.NewKeyer(snap)

	base, err := keyer.Key(testTask("backend"))
	require.NoError(t, err)

	changed := testTask("backend")
	changed.Kind = domain.KindFrontend
	other, err := keyer.Key(changed)
	require.NoError(t, err)

	assert.NotEqual(t, base, other)
}

func TestKeyer_InputSnapshotChangesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	keyer := cache.NewKeyer(snap)

	task := testTask("backend")
	task.Inputs = []string{"backend"}

	snap.EXPECT().Snapshot("backend").Return(uint64(1), nil)
	before, err := keyer.Key(task)
	require.NoError(t, err)

	snap.EXPECT().Snapshot("backend").Return(uint64(2), nil)
	after, err := keyer.Key(task)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestKeyer_InputOrderIrrelevant(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	snap.EXPECT().Snapshot(gomock.Any()).DoAndReturn(func(path string) (uint64, error) {
		if path == "a" {
			return 1, nil
		}
		return 2, nil
	}).AnyTimes()
	keyer := cache.NewKeyer(snap)

	first := testTask("backend")
	first.Inputs = []string{"a", "b"}
	second := testTask("backend")
	second.Inputs = []string{"b", "a"}

	keyA, err := keyer.Key(first)
	require.NoError(t, err)
	keyB, err := keyer.Key(second)
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB)
}

func TestKeyer_MissingInputDoesNotFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	snap := mocks.NewMockInputSnapshotter(ctrl)
	snap.EXPECT().Snapshot("gone").Return(uint64(0), errors.New("no such file")).Times(2)
	keyer := cache.NewKeyer(snap)

	task := testTask("backend")
	task.Inputs = []string{"gone"}

	first, err := keyer.Key(task)
	require.NoError(t, err)
	second, err := keyer.Key(task)
	require.NoError(t, err)

	assert.Equal(t, first, second, "a consistently absent input must key deterministically")
}

func TestKeyer_RealSnapshotter(t *testing.T) {
	dir := t.TempDir()
	keyer := cache.NewKeyer(fs.NewSnapshotter(fs.NewWalker()))

	task := testTask("backend")
	task.Inputs = []string{dir}

	before, err := keyer.Key(task)
	require.NoError(t, err)

	writeFile(t, dir, "app.py", "pass")
	after, err := keyer.Key(task)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}
