package view

import (
	"fmt"
	"time"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// WordFromEntity converts a shared word plus an optional per-identity overlay
// into a view word. A nil overlay yields the defaults: not mastered, no
// last-reviewed label. Total for any well-formed input; never fails.
func WordFromEntity(w entities.Word, overlay *entities.UserWord) Word {
	out := Word{
		ID:           w.ID,
		Word:         w.Word,
		Phonetic:     w.Phonetic,
		DefinitionEn: w.DefinitionEn,
		DefinitionCn: w.DefinitionCn,
		ExampleEn:    w.ExampleEn,
		ExampleCn:    w.ExampleCn,
		Source:       w.Source,
	}
	if overlay != nil {
		out.Mastered = overlay.Mastered
		if overlay.LastReviewed != nil {
			out.LastReviewed = FormatRelativeTime(*overlay.LastReviewed)
		}
	}
	return out
}

// ArticleFromEntity converts a stored article into a view article.
func ArticleFromEntity(a entities.Article) Article {
	return Article{
		ID:         a.ID,
		Title:      a.Title,
		Level:      a.Level,
		ReadTime:   a.ReadTime,
		Difficulty: a.Difficulty,
		Content:    a.Content,
		Keywords:   a.Keywords,
	}
}

// MistakeFromEntity converts a stored mistake into a view mistake with its
// relative-time label computed from the creation timestamp.
func MistakeFromEntity(m entities.UserMistake) Mistake {
	return Mistake{
		ID:          m.ID,
		Title:       m.Title,
		Type:        m.Type,
		Description: m.Description,
		Time:        FormatRelativeTime(m.CreatedAt),
		Category:    m.Category,
	}
}

// StatsFromEntity converts a stored stats row into a view stats record.
func StatsFromEntity(s entities.UserStats) Stats {
	return Stats{
		StreakDays: s.StreakDays,
		TotalWords: s.TotalWords,
		TotalHours: s.TotalHours,
		TodayWords: s.TodayWords,
		TodayHours: s.TodayHours,
		DailyGoal:  s.DailyGoal,
	}
}

// FormatRelativeTime renders a timestamp as a human-readable label in the
// product language. Labels are computed at conversion time and go stale
// between refreshes; they are never persisted.
func FormatRelativeTime(t time.Time) string {
	return formatRelativeTimeAt(t, time.Now())
}

func formatRelativeTimeAt(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := hours / 24

	switch {
	case mins < 1:
		return "刚刚"
	case mins < 60:
		return fmt.Sprintf("%d分钟前", mins)
	case hours < 24:
		return fmt.Sprintf("%d小时前", hours)
	case days < 7:
		return fmt.Sprintf("%d天前", days)
	default:
		return t.Format("2006/1/2")
	}
}
