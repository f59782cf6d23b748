package baseline

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/internal/models"
	"github.com/leon-madara/ResonaAI-sub003/pkg/events"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Config tunes baseline convergence and deviation sensitivity.
type Config struct {
	// MinSessions is how many sessions establish a baseline.
	MinSessions int `mapstructure:"min_sessions" validate:"gte=3,lte=5"`
	// OldWeight and NewWeight control the incremental merge. They should
	// sum to 1; older sessions keep most of the weight so the baseline
	// drifts slowly.
	OldWeight float64 `mapstructure:"old_weight" validate:"gt=0,lt=1"`
	NewWeight float64 `mapstructure:"new_weight" validate:"gt=0,lt=1"`
	// Per-metric significance thresholds for deviation tagging.
	PitchThreshold   float64 `mapstructure:"pitch_threshold"`
	EnergyThreshold  float64 `mapstructure:"energy_threshold"`
	RateThreshold    float64 `mapstructure:"rate_threshold"`
	ProsodyThreshold float64 `mapstructure:"prosody_threshold"`
	EmotionThreshold float64 `mapstructure:"emotion_threshold"`
}

// DefaultConfig returns the deployed tracker settings.
func DefaultConfig() Config {
	return Config{
		MinSessions:      3,
		OldWeight:        0.7,
		NewWeight:        0.3,
		PitchThreshold:   0.3,
		EnergyThreshold:  0.35,
		RateThreshold:    0.35,
		ProsodyThreshold: 0.4,
		EmotionThreshold: 0.35,
	}
}

// Tracker merges per-session voice metrics into per-user baselines and
// scores sessions against them. Updates for the same user serialize on a
// per-user lock so concurrent sessions cannot lose merges.
type Tracker struct {
	cfg    Config
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a Tracker on top of a Store.
func New(cfg Config, store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinSessions <= 0 {
		cfg.MinSessions = DefaultConfig().MinSessions
	}
	if cfg.OldWeight <= 0 || cfg.NewWeight <= 0 {
		cfg.OldWeight = DefaultConfig().OldWeight
		cfg.NewWeight = DefaultConfig().NewWeight
	}
	return &Tracker{
		cfg:    cfg,
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[userID] = lock
	}
	return lock
}

// Update merges one session's metrics into every tracked baseline row for
// the user and returns the refreshed rows. The merge is deterministic given
// its inputs; at-most-once submission per session is the caller's job.
func (t *Tracker) Update(ctx context.Context, userID string, m *voice.SessionMetrics) ([]*models.UserBaseline, error) {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	updates := []struct {
		typ  string
		stat models.BaselineValue
	}{
		{models.BaselinePitch, models.BaselineValue{Mean: m.PitchMean, Std: m.PitchStd}},
		{models.BaselineEnergy, models.BaselineValue{Mean: m.EnergyMean, Std: m.EnergyStd}},
		{models.BaselineRate, models.BaselineValue{Mean: m.SpeechRate}},
		{models.BaselineProsodyVariance, models.BaselineValue{Mean: m.ProsodyVariance}},
		{models.BaselineEmotion, models.BaselineValue{Distribution: m.EmotionDist}},
	}

	rows := make([]*models.UserBaseline, 0, len(updates))
	for _, u := range updates {
		row, err := t.store.Load(ctx, userID, u.typ)
		if err != nil {
			return nil, err
		}
		if row == nil {
			row = &models.UserBaseline{UserID: userID, BaselineType: u.typ}
			if err := row.SetStat(u.stat); err != nil {
				return nil, err
			}
		} else {
			old, err := row.Stat()
			if err != nil {
				return nil, err
			}
			if err := row.SetStat(t.merge(old, u.stat)); err != nil {
				return nil, err
			}
		}
		row.SessionCount++
		row.Established = row.SessionCount >= t.cfg.MinSessions
		rows = append(rows, row)
	}

	// All five rows land together or not at all; a partial write would
	// leave the metrics at diverging session counts.
	if err := t.store.SaveAll(ctx, rows); err != nil {
		return nil, err
	}

	t.logger.Info("baseline updated",
		zap.String("user_id", userID),
		zap.Int("session_count", rows[0].SessionCount),
		zap.Bool("established", rows[0].Established))
	if rows[0].SessionCount == t.cfg.MinSessions {
		events.Publish(events.TypeBaselineEstablished, map[string]interface{}{
			"user_id":       userID,
			"session_count": rows[0].SessionCount,
		}, "baseline")
	}
	return rows, nil
}

// merge folds a new session summary into the running baseline with the
// configured old/new weighting.
func (t *Tracker) merge(old, cur models.BaselineValue) models.BaselineValue {
	out := models.BaselineValue{
		Mean: t.cfg.OldWeight*old.Mean + t.cfg.NewWeight*cur.Mean,
		Std:  t.cfg.OldWeight*old.Std + t.cfg.NewWeight*cur.Std,
	}
	if old.Distribution == nil && cur.Distribution == nil {
		return out
	}
	out.Distribution = make(map[string]float64)
	for label, v := range old.Distribution {
		out.Distribution[label] = t.cfg.OldWeight * v
	}
	for label, v := range cur.Distribution {
		out.Distribution[label] += t.cfg.NewWeight * v
	}
	return out
}

// CheckDeviation scores the session against every established baseline row.
// When no baseline is established yet, the result carries Established=false
// and no numeric score; that is a first-class outcome, not an error.
func (t *Tracker) CheckDeviation(ctx context.Context, userID, sessionID string, m *voice.SessionMetrics) (*voice.SessionDeviation, error) {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	dev := &voice.SessionDeviation{
		UserID:    userID,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}

	checks := []struct {
		typ       string
		current   float64
		threshold float64
	}{
		{models.BaselinePitch, m.PitchMean, t.cfg.PitchThreshold},
		{models.BaselineEnergy, m.EnergyMean, t.cfg.EnergyThreshold},
		{models.BaselineRate, m.SpeechRate, t.cfg.RateThreshold},
		{models.BaselineProsodyVariance, m.ProsodyVariance, t.cfg.ProsodyThreshold},
	}

	var total float64
	var counted int
	for _, c := range checks {
		row, err := t.store.Load(ctx, userID, c.typ)
		if err != nil {
			return nil, err
		}
		if row == nil || !row.Established {
			continue
		}
		stat, err := row.Stat()
		if err != nil {
			return nil, err
		}
		score := relativeDeviation(c.current, stat.Mean, stat.Std)
		total += score
		counted++
		dev.BaselineValues = append(dev.BaselineValues, stat.Mean)
		dev.CurrentValues = append(dev.CurrentValues, c.current)
		if score >= c.threshold {
			dev.SignificantChanges = append(dev.SignificantChanges, c.typ+"_shift")
		}
	}

	if emoScore, ok, err := t.emotionDeviation(ctx, userID, m); err != nil {
		return nil, err
	} else if ok {
		total += emoScore
		counted++
		if emoScore >= t.cfg.EmotionThreshold {
			dev.SignificantChanges = append(dev.SignificantChanges, models.BaselineEmotion+"_shift")
		}
	}

	if counted == 0 {
		return dev, nil
	}
	dev.Established = true
	dev.DeviationScore = voice.Clamp01(total / float64(counted))
	return dev, nil
}

// Load returns every existing baseline row for a user, in metric-type order.
func (t *Tracker) Load(ctx context.Context, userID string) ([]*models.UserBaseline, error) {
	rows := make([]*models.UserBaseline, 0, len(models.BaselineTypes))
	for _, typ := range models.BaselineTypes {
		row, err := t.store.Load(ctx, userID, typ)
		if err != nil {
			return nil, err
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Record persists an established deviation as an immutable row. Sentinel
// (not-established) deviations are not stored.
func (t *Tracker) Record(ctx context.Context, dev *voice.SessionDeviation) error {
	if !dev.Established {
		return nil
	}
	row := &models.SessionDeviation{
		UserID:         dev.UserID,
		SessionID:      dev.SessionID,
		DeviationType:  "aggregate",
		DeviationScore: dev.DeviationScore,
	}
	if len(dev.BaselineValues) > 0 {
		row.BaselineValue = dev.BaselineValues[0]
		row.CurrentValue = dev.CurrentValues[0]
	}
	if err := row.SetChanges(dev.SignificantChanges); err != nil {
		return err
	}
	return t.store.SaveDeviation(ctx, row)
}

// emotionDeviation is the total-variation distance between the session's
// emotion distribution and the established emotion baseline.
func (t *Tracker) emotionDeviation(ctx context.Context, userID string, m *voice.SessionMetrics) (float64, bool, error) {
	if len(m.EmotionDist) == 0 {
		return 0, false, nil
	}
	row, err := t.store.Load(ctx, userID, models.BaselineEmotion)
	if err != nil {
		return 0, false, err
	}
	if row == nil || !row.Established {
		return 0, false, nil
	}
	stat, err := row.Stat()
	if err != nil {
		return 0, false, err
	}
	labels := make(map[string]bool)
	for l := range stat.Distribution {
		labels[l] = true
	}
	for l := range m.EmotionDist {
		labels[l] = true
	}
	var dist float64
	for l := range labels {
		dist += math.Abs(stat.Distribution[l] - m.EmotionDist[l])
	}
	return voice.Clamp01(dist / 2), true, nil
}

// relativeDeviation normalizes |current - mean| by the baseline's own scale.
// The std term keeps naturally variable metrics from over-triggering.
func relativeDeviation(current, mean, std float64) float64 {
	scale := math.Abs(mean) + 2*std
	if scale < 1e-9 {
		if math.Abs(current) < 1e-9 {
			return 0
		}
		return 1
	}
	return voice.Clamp01(math.Abs(current-mean) / scale)
}
