package baseline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon-madara/ResonaAI-sub003/internal/models"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

func stableMetrics() *voice.SessionMetrics {
	return &voice.SessionMetrics{
		PitchMean:       180,
		PitchStd:        15,
		EnergyMean:      0.4,
		EnergyStd:       0.05,
		SpeechRate:      3.2,
		ProsodyVariance: 225.0025,
		EmotionDist:     map[string]float64{voice.EmotionNeutral: 1},
	}
}

func TestUpdate_EstablishesAfterMinSessions(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rows, err := tr.Update(ctx, "user-1", stableMetrics())
		require.NoError(t, err)
		require.Len(t, rows, 5)
		for _, row := range rows {
			assert.Equal(t, i+1, row.SessionCount)
			assert.Equal(t, i+1 >= 3, row.Established)
		}
	}

	rows, err := tr.Load(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for _, row := range rows {
		assert.True(t, row.Established)
	}
}

func TestUpdate_WeightedMerge(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	first := stableMetrics()
	_, err := tr.Update(ctx, "user-1", first)
	require.NoError(t, err)

	second := stableMetrics()
	second.PitchMean = 280
	rows, err := tr.Update(ctx, "user-1", second)
	require.NoError(t, err)

	var pitch *models.UserBaseline
	for _, row := range rows {
		if row.BaselineType == models.BaselinePitch {
			pitch = row
		}
	}
	require.NotNil(t, pitch)
	stat, err := pitch.Stat()
	require.NoError(t, err)
	// 0.7 * 180 + 0.3 * 280
	assert.InDelta(t, 210, stat.Mean, 1e-9)
}

func TestUpdate_EmotionDistributionMerge(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	first := stableMetrics()
	first.EmotionDist = map[string]float64{voice.EmotionNeutral: 1}
	_, err := tr.Update(ctx, "user-1", first)
	require.NoError(t, err)

	second := stableMetrics()
	second.EmotionDist = map[string]float64{voice.EmotionSad: 1}
	rows, err := tr.Update(ctx, "user-1", second)
	require.NoError(t, err)

	for _, row := range rows {
		if row.BaselineType != models.BaselineEmotion {
			continue
		}
		stat, err := row.Stat()
		require.NoError(t, err)
		assert.InDelta(t, 0.7, stat.Distribution[voice.EmotionNeutral], 1e-9)
		assert.InDelta(t, 0.3, stat.Distribution[voice.EmotionSad], 1e-9)
	}
}

func TestCheckDeviation_BeforeEstablished(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := tr.Update(ctx, "user-1", stableMetrics())
	require.NoError(t, err)

	dev, err := tr.CheckDeviation(ctx, "user-1", "sess-1", stableMetrics())
	require.NoError(t, err)
	assert.False(t, dev.Established)
	assert.Equal(t, 0.0, dev.DeviationScore)
	assert.Empty(t, dev.SignificantChanges)
}

func TestCheckDeviation_StableSessionScoresLow(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := tr.Update(ctx, "user-1", stableMetrics())
		require.NoError(t, err)
	}

	dev, err := tr.CheckDeviation(ctx, "user-1", "sess-5", stableMetrics())
	require.NoError(t, err)
	assert.True(t, dev.Established)
	assert.Less(t, dev.DeviationScore, 0.3)
	assert.Empty(t, dev.SignificantChanges)
	assert.Len(t, dev.BaselineValues, 4)
}

func TestCheckDeviation_FlagsShiftedMetrics(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tr.Update(ctx, "user-1", stableMetrics())
		require.NoError(t, err)
	}

	shifted := stableMetrics()
	shifted.PitchMean = 320 // |320-180| / (180 + 2*15) = 0.667
	shifted.EmotionDist = map[string]float64{voice.EmotionSad: 1}

	dev, err := tr.CheckDeviation(ctx, "user-1", "sess-4", shifted)
	require.NoError(t, err)
	assert.True(t, dev.Established)
	assert.Contains(t, dev.SignificantChanges, "pitch_shift")
	assert.Contains(t, dev.SignificantChanges, "emotion_shift")
	assert.Greater(t, dev.DeviationScore, 0.2)
}

func TestRecord_PersistsEstablishedOnly(t *testing.T) {
	store := NewMemoryStore()
	tr := New(DefaultConfig(), store, nil)
	ctx := context.Background()

	sentinel := &voice.SessionDeviation{UserID: "u", SessionID: "s"}
	require.NoError(t, tr.Record(ctx, sentinel))
	assert.Empty(t, store.Deviations())

	established := &voice.SessionDeviation{
		UserID:             "u",
		SessionID:          "s",
		Established:        true,
		DeviationScore:     0.4,
		SignificantChanges: []string{"pitch_shift"},
		BaselineValues:     []float64{180},
		CurrentValues:      []float64{240},
	}
	require.NoError(t, tr.Record(ctx, established))

	saved := store.Deviations()
	require.Len(t, saved, 1)
	assert.Equal(t, "aggregate", saved[0].DeviationType)
	assert.Equal(t, 0.4, saved[0].DeviationScore)

	assert.Equal(t, []string{"pitch_shift"}, saved[0].Changes())
}

// flakyStore refuses batch writes until healed, leaving single-row writes
// untouched.
type flakyStore struct {
	*MemoryStore
	failSaveAll bool
}

func (s *flakyStore) SaveAll(ctx context.Context, rows []*models.UserBaseline) error {
	if s.failSaveAll {
		return errors.New("storage write failed")
	}
	return s.MemoryStore.SaveAll(ctx, rows)
}

func TestUpdate_StorageFailureLeavesNoPartialState(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), failSaveAll: true}
	tr := New(DefaultConfig(), store, nil)
	ctx := context.Background()

	_, err := tr.Update(ctx, "user-1", stableMetrics())
	require.Error(t, err)

	// The failed update must not have persisted any of the five rows.
	rows, err := tr.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// After storage recovers, a retry lands all rows at the same count.
	store.failSaveAll = false
	updated, err := tr.Update(ctx, "user-1", stableMetrics())
	require.NoError(t, err)
	require.Len(t, updated, 5)
	for _, row := range updated {
		assert.Equal(t, 1, row.SessionCount)
	}
}

func TestRelativeDeviation(t *testing.T) {
	assert.Equal(t, 0.0, relativeDeviation(180, 180, 15))
	assert.InDelta(t, 0.667, relativeDeviation(320, 180, 15), 0.001)
	assert.Equal(t, 0.0, relativeDeviation(0, 0, 0))
	assert.Equal(t, 1.0, relativeDeviation(5, 0, 0))
}

func TestTracker_IsolatesUsers(t *testing.T) {
	tr := New(DefaultConfig(), NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := tr.Update(ctx, "user-1", stableMetrics())
		require.NoError(t, err)
	}

	rows, err := tr.Load(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, rows)

	dev, err := tr.CheckDeviation(ctx, "user-2", "sess-1", stableMetrics())
	require.NoError(t, err)
	assert.False(t, dev.Established)
}
