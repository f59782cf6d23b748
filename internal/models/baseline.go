package models

import (
	"encoding/json"
	"time"
)

// Baseline metric types. One UserBaseline row exists per (user, type).
const (
	BaselineEmotion         = "emotion"
	BaselinePitch           = "pitch"
	BaselineEnergy          = "energy"
	BaselineRate            = "rate"
	BaselineProsodyVariance = "prosody_variance"
)

// BaselineTypes lists every tracked metric type.
var BaselineTypes = []string{
	BaselineEmotion, BaselinePitch, BaselineEnergy,
	BaselineRate, BaselineProsodyVariance,
}

// BaselineValue is the statistical summary stored inside a UserBaseline row.
// Scalar metrics use Mean/Std; the emotion baseline uses Distribution.
type BaselineValue struct {
	Mean         float64            `json:"mean,omitempty"`
	Std          float64            `json:"std,omitempty"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

// UserBaseline is one user's rolling "normal" for a single voice metric.
// Rows are updated incrementally, never replaced wholesale.
type UserBaseline struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"type:varchar(128);not null;uniqueIndex:idx_user_baseline,priority:1"`
	BaselineType string    `json:"baseline_type" gorm:"type:varchar(32);not null;uniqueIndex:idx_user_baseline,priority:2"`
	Value        string    `json:"-" gorm:"type:text;not null"`
	SessionCount int       `json:"session_count" gorm:"not null;default:0"`
	Established  bool      `json:"established" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName picks the table name.
func (UserBaseline) TableName() string {
	return "user_baselines"
}

// Stat decodes the stored statistical summary.
func (b *UserBaseline) Stat() (BaselineValue, error) {
	var v BaselineValue
	if b.Value == "" {
		return v, nil
	}
	err := json.Unmarshal([]byte(b.Value), &v)
	return v, err
}

// SetStat encodes and stores the statistical summary.
func (b *UserBaseline) SetStat(v BaselineValue) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Value = string(raw)
	return nil
}

// SessionDeviation records how far one session sat from the user's baseline.
// Created once per analyzed session and immutable afterwards.
type SessionDeviation struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             string    `json:"user_id" gorm:"type:varchar(128);not null;index"`
	SessionID          string    `json:"session_id" gorm:"type:varchar(128);not null;index"`
	DeviationType      string    `json:"deviation_type" gorm:"type:varchar(32);not null"`
	BaselineValue      float64   `json:"baseline_value"`
	CurrentValue       float64   `json:"current_value"`
	DeviationScore     float64   `json:"deviation_score"`
	SignificantChanges string    `json:"-" gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName picks the table name.
func (SessionDeviation) TableName() string {
	return "session_deviations"
}

// Changes decodes the significant-change tags.
func (d *SessionDeviation) Changes() []string {
	if d.SignificantChanges == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(d.SignificantChanges), &tags); err != nil {
		return nil
	}
	return tags
}

// SetChanges encodes the significant-change tags.
func (d *SessionDeviation) SetChanges(tags []string) error {
	if len(tags) == 0 {
		d.SignificantChanges = ""
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	d.SignificantChanges = string(raw)
	return nil
}
