package seed

import (
	"testing"

	"shepherd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPresetsParse(t *testing.T) {
	names := PresetNames()
	require.Equal(t, []string{"large_community", "small_congregation"}, names)
	for _, name := range names {
		p, err := LoadPreset(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
	}
}

func TestParsePreset_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing name": "worshipers: 3\n",
		"bad tag":      "name: x\nleaders:\n  - name: A\n    posts:\n      - content: hi\n        tag: GOSSIP\n",
		"bad intent":   "name: x\nleaders:\n  - name: A\n    posts:\n      - content: hi\n        intent: SELLING\n",
		"nameless":     "name: x\nleaders:\n  - faith: Islam\n",
		"not yaml":     "name: [unterminated\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePreset([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyPreset_SmallCongregation(t *testing.T) {
	db := openTestDB(t)
	p, err := LoadPreset("small_congregation")
	require.NoError(t, err)

	sum, err := NewSeeder(db, Options{RandomSeed: 3}).ApplyPreset(p)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Leaders)
	assert.Equal(t, 8, sum.Worshipers)
	// 4 hand-written posts plus 2 generated per leader.
	assert.Equal(t, 8, sum.Posts)

	var ruth models.User
	require.NoError(t, db.Where("name = ?", "Pastor Ruth Adeyemi").First(&ruth).Error)
	assert.Equal(t, models.RoleLeader, ruth.Role)
	assert.Equal(t, "Christianity", ruth.Faith)

	var scheduled []models.Post
	require.NoError(t, db.Where("leader_id = ? AND is_published = ?", ruth.ID, false).Find(&scheduled).Error)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "Tomorrow's reflection, scheduled ahead.", scheduled[0].ContentText)
	require.NotNil(t, scheduled[0].ScheduledAt)

	var video models.Post
	require.NoError(t, db.Where("media_type = ? AND leader_id = ? AND media_url = ?", models.MediaVideo, ruth.ID, "https://cdn.example.com/video/patience.mp4").First(&video).Error)
	assert.Equal(t, models.TagTeaching, video.Tag)
}
