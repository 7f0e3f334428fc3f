// Package activity fetches and classifies creator-platform campaigns.
//
// Campaigns come from the mp.toutiao.com activity API as JSON; the
// analyzer then probes the campaign page in the live browser session to
// guess how the campaign wants to be entered (original post, like/share,
// form, one-click join).
package activity

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Activity is one campaign as returned by the list API. Field names
// follow the wire format.
type Activity struct {
	ActivityID   int64  `json:"activity_id"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	ActivityTime string `json:"activity_time"`
	Reward       string `json:"activity_reward"`
	Participants string `json:"activity_participants"`
	PartIn       int    `json:"part_in"`
	Status       int    `json:"status"`
	HashtagID    int64  `json:"hashtag_id"`
	HashtagName  string `json:"hashtag_name"`
	Href         string `json:"href"`
	StartTime    int64  `json:"activity_start_time"`
	EndTime      int64  `json:"activity_end_time"`
}

var hashtagRe = regexp.MustCompile(`#([^#]+)#`)

// ID returns the campaign id as the string form used for ledger keys.
func (a *Activity) ID() string {
	return strconv.FormatInt(a.ActivityID, 10)
}

// Expired reports whether the campaign ended before now. A zero end
// time means the API gave no deadline, which counts as still open.
func (a *Activity) Expired(now time.Time) bool {
	if a.EndTime == 0 {
		return false
	}
	return a.EndTime < now.Unix()
}

// Hashtag returns the campaign topic in #话题# form. When the API did
// not attach a hashtag it falls back to scanning the title and
// introduction; empty string means no topic at all.
func (a *Activity) Hashtag() string {
	if a.HashtagName != "" {
		return "#" + a.HashtagName + "#"
	}
	return hashtagRe.FindString(a.Title + " " + a.Introduction)
}

// URL returns the campaign landing page, preferring the API-provided
// href over the generic panel link.
func (a *Activity) URL() string {
	if a.Href != "" {
		return a.Href
	}
	return fmt.Sprintf("https://mp.toutiao.com/profile_v3_public/public/activity/?activity_location=panel_invite_discuss_hot_mp&id=%d", a.ActivityID)
}
