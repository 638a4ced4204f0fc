// Package learning caches the five study collections (words, collected
// words, articles, mistakes, stats) for the current identity. Reads come
// from the cache; refreshes repopulate it from the database repositories.
//
// Refresh completions carry sequence numbers. A completion older than the
// newest one already applied to a collection is discarded, so a stale fetch
// from a previous identity can never overwrite fresher data after a quick
// sign-out/sign-in.
package learning

import (
	"errors"
	"log"
	"sync"

	"github.com/yuluo11/CET-Smart-Learn/internal/database/articles"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/mistakes"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/stats"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/userwords"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/words"
	"github.com/yuluo11/CET-Smart-Learn/internal/defaults"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/session"
	"github.com/yuluo11/CET-Smart-Learn/internal/view"
)

// ErrNotAuthenticated is returned by mutations invoked without an identity.
// The check happens before any database call.
var ErrNotAuthenticated = errors.New("请先登录")

type collection int

const (
	collectionWords collection = iota
	collectionCollected
	collectionArticles
	collectionMistakes
	collectionStats
	collectionCount
)

var collectionNames = [collectionCount]string{
	"words", "collected", "articles", "mistakes", "stats",
}

// MistakeCounts are the derived counters shown alongside the mistake list.
// Practiced is always Total minus Unpracticed.
type MistakeCounts struct {
	Total       int `json:"total"`
	Practiced   int `json:"practiced"`
	Unpracticed int `json:"unpracticed"`
}

// Repositories bundles the collection providers the store reads from.
type Repositories struct {
	Words     *words.Repository
	UserWords *userwords.Repository
	Articles  *articles.Repository
	Mistakes  *mistakes.Repository
	Stats     *stats.Repository
}

// Store is the learning-data cache. Fetch failures are logged and leave the
// previous cache in place; mutations propagate errors to the caller.
type Store struct {
	sessions *session.Store
	repos    Repositories

	mu             sync.RWMutex
	words          []view.Word
	collected      []view.Word
	articles       []view.Article
	mistakes       []view.Mistake
	mistakeCounts  MistakeCounts
	stats          view.Stats
	defaultArticle view.Article

	seq      [collectionCount]uint64
	applied  [collectionCount]uint64
	inFlight [collectionCount]int

	unsubscribe func()
	done        chan struct{}
}

// NewStore creates a learning store pre-populated with the built-in default
// content. Call Watch to react to identity changes and Close on shutdown.
func NewStore(sessions *session.Store, repos Repositories) *Store {
	s := &Store{
		sessions:       sessions,
		repos:          repos,
		stats:          view.DefaultStats,
		defaultArticle: view.ArticleFromEntity(defaults.Article()),
		done:           make(chan struct{}),
	}

	for _, w := range defaults.Words() {
		s.words = append(s.words, view.WordFromEntity(w, nil))
	}
	for _, m := range defaults.Mistakes() {
		s.mistakes = append(s.mistakes, view.MistakeFromEntity(m))
	}
	s.mistakeCounts = MistakeCounts{Total: len(s.mistakes), Unpracticed: len(s.mistakes)}

	return s
}

// Watch starts consuming session store changes. An identity appearing after
// being absent refreshes every collection; an identity disappearing leaves
// the caches untouched.
func (s *Store) Watch() {
	changes, cancel := s.sessions.Subscribe()
	s.unsubscribe = cancel

	hadIdentity := s.sessions.Identity() != nil

	go func() {
		for {
			select {
			case change, ok := <-changes:
				if !ok {
					return
				}
				hasIdentity := change.Identity != nil
				if hasIdentity && !hadIdentity {
					s.RefreshAll()
				}
				hadIdentity = hasIdentity
			case <-s.done:
				return
			}
		}
	}()
}

// Close stops the session watcher.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	close(s.done)
}

// RefreshAll refreshes all five collections concurrently and returns once
// every refresh has completed.
func (s *Store) RefreshAll() {
	var wg sync.WaitGroup
	for _, refresh := range []func(){
		s.RefreshWords,
		s.RefreshCollected,
		s.RefreshArticles,
		s.RefreshMistakes,
		s.RefreshStats,
	} {
		wg.Add(1)
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(refresh)
	}
	wg.Wait()
}

// beginRefresh allocates the next sequence number for a collection and marks
// it loading.
func (s *Store) beginRefresh(c collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[c]++
	s.inFlight[c]++
	return s.seq[c]
}

// finishRefresh applies a completed refresh unless a newer completion was
// already applied. A nil apply means the fetch failed; the loading flag still
// drops and the previous cache stays.
func (s *Store) finishRefresh(c collection, seq uint64, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight[c]--
	if apply == nil {
		return
	}
	if seq < s.applied[c] {
		log.Printf("learning: discarding stale %s refresh (seq %d < %d)", collectionNames[c], seq, s.applied[c])
		return
	}
	s.applied[c] = seq
	apply()
}

// RefreshWords reloads the shared word list with the identity's overlay
// applied. Without an identity the overlay is empty.
func (s *Store) RefreshWords() {
	seq := s.beginRefresh(collectionWords)

	shared, err := s.repos.Words.List("")
	if err != nil {
		log.Printf("learning: failed to fetch words: %v", err)
		s.finishRefresh(collectionWords, seq, nil)
		return
	}

	overlay := map[string]*entities.UserWord{}
	if identity := s.sessions.Identity(); identity != nil {
		rows, err := s.repos.UserWords.ListByUser(identity.ID)
		if err != nil {
			log.Printf("learning: failed to fetch word overlay: %v", err)
			s.finishRefresh(collectionWords, seq, nil)
			return
		}
		for i := range rows {
			overlay[rows[i].WordID] = &rows[i]
		}
	}

	converted := make([]view.Word, 0, len(shared))
	for _, w := range shared {
		converted = append(converted, view.WordFromEntity(w, overlay[w.ID]))
	}

	s.finishRefresh(collectionWords, seq, func() {
		s.words = converted
	})
}

// RefreshCollected reloads the collected-word list from the overlay rows.
func (s *Store) RefreshCollected() {
	seq := s.beginRefresh(collectionCollected)

	identity := s.sessions.Identity()
	if identity == nil {
		s.finishRefresh(collectionCollected, seq, func() {
			s.collected = nil
		})
		return
	}

	rows, err := s.repos.UserWords.ListCollected(identity.ID)
	if err != nil {
		log.Printf("learning: failed to fetch collected words: %v", err)
		s.finishRefresh(collectionCollected, seq, nil)
		return
	}

	converted := collectedFromRows(rows)
	s.finishRefresh(collectionCollected, seq, func() {
		s.collected = converted
	})
}

func collectedFromRows(rows []entities.UserWord) []view.Word {
	converted := make([]view.Word, 0, len(rows))
	for i := range rows {
		converted = append(converted, view.WordFromEntity(rows[i].Word, &rows[i]))
	}
	return converted
}

// RefreshArticles reloads the article list.
func (s *Store) RefreshArticles() {
	seq := s.beginRefresh(collectionArticles)

	rows, err := s.repos.Articles.List("")
	if err != nil {
		log.Printf("learning: failed to fetch articles: %v", err)
		s.finishRefresh(collectionArticles, seq, nil)
		return
	}

	converted := make([]view.Article, 0, len(rows))
	for _, a := range rows {
		converted = append(converted, view.ArticleFromEntity(a))
	}

	s.finishRefresh(collectionArticles, seq, func() {
		s.articles = converted
	})
}

// RefreshMistakes reloads the mistake list and its derived counts.
func (s *Store) RefreshMistakes() {
	seq := s.beginRefresh(collectionMistakes)

	identity := s.sessions.Identity()
	if identity == nil {
		s.finishRefresh(collectionMistakes, seq, func() {
			s.mistakes = nil
			s.mistakeCounts = MistakeCounts{}
		})
		return
	}

	rows, err := s.repos.Mistakes.ListByUser(identity.ID)
	if err != nil {
		log.Printf("learning: failed to fetch mistakes: %v", err)
		s.finishRefresh(collectionMistakes, seq, nil)
		return
	}
	unpracticed, err := s.repos.Mistakes.UnpracticedCount(identity.ID)
	if err != nil {
		log.Printf("learning: failed to count mistakes: %v", err)
		s.finishRefresh(collectionMistakes, seq, nil)
		return
	}

	converted := make([]view.Mistake, 0, len(rows))
	for _, m := range rows {
		converted = append(converted, view.MistakeFromEntity(m))
	}
	counts := MistakeCounts{
		Total:       len(rows),
		Practiced:   len(rows) - int(unpracticed),
		Unpracticed: int(unpracticed),
	}

	s.finishRefresh(collectionMistakes, seq, func() {
		s.mistakes = converted
		s.mistakeCounts = counts
	})
}

// RefreshStats reloads the identity's stats. A missing row keeps the default
// stats view.
func (s *Store) RefreshStats() {
	seq := s.beginRefresh(collectionStats)

	identity := s.sessions.Identity()
	if identity == nil {
		s.finishRefresh(collectionStats, seq, func() {
			s.stats = view.DefaultStats
		})
		return
	}

	row, err := s.repos.Stats.Get(identity.ID)
	if err != nil {
		log.Printf("learning: failed to fetch stats: %v", err)
		s.finishRefresh(collectionStats, seq, nil)
		return
	}

	converted := view.StatsFromEntity(*row)
	s.finishRefresh(collectionStats, seq, func() {
		s.stats = converted
	})
}

// Words returns the cached word list.
func (s *Store) Words() []view.Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.words
}

// CollectedWords returns the cached collected-word list.
func (s *Store) CollectedWords() []view.Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collected
}

// Articles returns the cached article list.
func (s *Store) Articles() []view.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.articles
}

// CurrentArticle returns the newest article, falling back to the built-in
// passage while the collection is empty.
func (s *Store) CurrentArticle() view.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.articles) > 0 {
		return s.articles[0]
	}
	return s.defaultArticle
}

// Mistakes returns the cached mistake list.
func (s *Store) Mistakes() []view.Mistake {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mistakes
}

// MistakeCounts returns the derived mistake counters.
func (s *Store) MistakeCounts() MistakeCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mistakeCounts
}

// Stats returns the cached stats view.
func (s *Store) Stats() view.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Loading reports whether any refresh is still in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.inFlight {
		if n > 0 {
			return true
		}
	}
	return false
}

// UpdateWordMastered upserts the overlay's mastered flag and patches the
// cached word in place. No refetch.
func (s *Store) UpdateWordMastered(wordID string, mastered bool) error {
	identity := s.sessions.Identity()
	if identity == nil {
		return ErrNotAuthenticated
	}

	row, err := s.repos.UserWords.SetMastered(identity.ID, wordID, mastered)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.words {
		if s.words[i].ID == wordID {
			s.words[i].Mastered = row.Mastered
			if row.LastReviewed != nil {
				s.words[i].LastReviewed = view.FormatRelativeTime(*row.LastReviewed)
			}
			break
		}
	}
	return nil
}

// ToggleCollect upserts the overlay's collected flag and recomputes the
// collected collection from the database.
func (s *Store) ToggleCollect(wordID string, collected bool) error {
	identity := s.sessions.Identity()
	if identity == nil {
		return ErrNotAuthenticated
	}

	if _, err := s.repos.UserWords.SetCollected(identity.ID, wordID, collected); err != nil {
		return err
	}

	rows, err := s.repos.UserWords.ListCollected(identity.ID)
	if err != nil {
		return err
	}

	converted := collectedFromRows(rows)
	s.mu.Lock()
	s.collected = converted
	s.mu.Unlock()
	return nil
}

// CheckIn records the daily check-in and updates the cached stats.
func (s *Store) CheckIn() (view.Stats, error) {
	identity := s.sessions.Identity()
	if identity == nil {
		return view.Stats{}, ErrNotAuthenticated
	}

	row, err := s.repos.Stats.CheckIn(identity.ID)
	if err != nil {
		return view.Stats{}, err
	}

	converted := view.StatsFromEntity(*row)
	s.mu.Lock()
	s.stats = converted
	s.mu.Unlock()
	return converted, nil
}

// AddMistake records a mistake and refreshes the mistake list.
func (s *Store) AddMistake(title string, kind entities.MistakeType, description, category string) error {
	identity := s.sessions.Identity()
	if identity == nil {
		return ErrNotAuthenticated
	}

	err := s.repos.Mistakes.Add(&entities.UserMistake{
		UserID:      identity.ID,
		Title:       title,
		Type:        kind,
		Description: description,
		Category:    category,
	})
	if err != nil {
		return err
	}

	s.RefreshMistakes()
	return nil
}

// MarkMistakePracticed flags a mistake as practiced and refreshes the list.
func (s *Store) MarkMistakePracticed(id string) error {
	identity := s.sessions.Identity()
	if identity == nil {
		return ErrNotAuthenticated
	}

	if err := s.repos.Mistakes.MarkPracticed(id); err != nil {
		return err
	}

	s.RefreshMistakes()
	return nil
}
