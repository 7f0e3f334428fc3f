package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yhzhou/ttagent/internal/ledger"
)

func TestHashtag(t *testing.T) {
	a := &Activity{HashtagName: "秋日随手拍"}
	require.Equal(t, "#秋日随手拍#", a.Hashtag())

	a = &Activity{Title: "参与 #城市夜景# 赢好礼", Introduction: "无"}
	require.Equal(t, "#城市夜景#", a.Hashtag())

	a = &Activity{Title: "普通活动", Introduction: "快来 #分享生活# 吧"}
	require.Equal(t, "#分享生活#", a.Hashtag())

	a = &Activity{Title: "没有话题的活动"}
	require.Empty(t, a.Hashtag())
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := &Activity{EndTime: now.Add(-time.Hour).Unix()}
	require.True(t, a.Expired(now))

	a = &Activity{EndTime: now.Add(time.Hour).Unix()}
	require.False(t, a.Expired(now))

	// no deadline from the API
	a = &Activity{}
	require.False(t, a.Expired(now))
}

func TestURLFallback(t *testing.T) {
	a := &Activity{ActivityID: 42, Href: "https://example.com/act/42"}
	require.Equal(t, "https://example.com/act/42", a.URL())

	a = &Activity{ActivityID: 42}
	require.Contains(t, a.URL(), "id=42")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		act   *Activity
		probe pageProbe
		want  ledger.OperationKind
	}{
		{
			name:  "hashtag with publish entry",
			act:   &Activity{HashtagName: "话题"},
			probe: pageProbe{PublishEntry: true},
			want:  ledger.OpGenerateContent,
		},
		{
			name:  "hashtag without controls",
			act:   &Activity{HashtagName: "话题"},
			probe: pageProbe{},
			want:  ledger.OpGenerateContent,
		},
		{
			name:  "one click join",
			act:   &Activity{},
			probe: pageProbe{OneClick: true, LikeShare: true},
			want:  ledger.OpOneClick,
		},
		{
			name:  "form entry",
			act:   &Activity{},
			probe: pageProbe{FormFields: 3},
			want:  ledger.OpFillForm,
		},
		{
			name:  "like and share only",
			act:   &Activity{},
			probe: pageProbe{LikeShare: true},
			want:  ledger.OpLikeShare,
		},
		{
			name:  "nothing recognized",
			act:   &Activity{},
			probe: pageProbe{},
			want:  ledger.OpOther,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, conf, suggestion := classify(tt.act, tt.probe)
			require.Equal(t, tt.want, op)
			require.Greater(t, conf, 0.0)
			require.NotEmpty(t, suggestion)
		})
	}
}
