// Package scheduler runs the recurring maintenance jobs: daily article
// generation and expired one-time-code cleanup.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
	"github.com/yuluo11/CET-Smart-Learn/internal/config"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/tasks"
)

// articleTopics is the rotating topic pool for scheduled generation. The
// day-of-year picks the topic so consecutive days differ.
var articleTopics = []string{
	"artificial intelligence in education",
	"urbanization and public transport",
	"climate change and daily life",
	"the sharing economy",
	"traditional culture in the digital age",
	"health and work-life balance",
	"space exploration",
	"online learning versus classroom learning",
}

// DailyScheduler enqueues one article-generation task per exam level each
// day and purges expired verification codes.
type DailyScheduler struct {
	taskClient  *tasks.Client
	authService *auth.Service
	config      config.Scheduler

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewDailyScheduler creates a scheduler instance.
func NewDailyScheduler(taskClient *tasks.Client, authService *auth.Service, cfg config.Scheduler) *DailyScheduler {
	return &DailyScheduler{
		taskClient:  taskClient,
		authService: authService,
		config:      cfg,
		cron:        cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start registers the jobs and begins the cron loop.
func (s *DailyScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.config.ArticleGenEnabled {
		if _, err := s.cron.AddFunc(s.config.ArticleGenSchedule, s.enqueueArticleGeneration); err != nil {
			return fmt.Errorf("failed to schedule article generation: %w", err)
		}
		log.Printf("Scheduler: article generation scheduled at '%s'", s.config.ArticleGenSchedule)
	} else {
		log.Printf("Scheduler: article generation disabled")
	}

	if _, err := s.cron.AddFunc(s.config.OTPCleanupSchedule, s.purgeExpiredOTPCodes); err != nil {
		return fmt.Errorf("failed to schedule OTP cleanup: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the cron loop and waits for running jobs to complete.
func (s *DailyScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Scheduler: stopped")
}

func (s *DailyScheduler) enqueueArticleGeneration() {
	topic := todayTopic()
	for _, level := range []entities.Level{entities.LevelCET4, entities.LevelCET6} {
		task := tasks.GenerateArticleTask{Level: level, Topic: topic}
		if _, err := s.taskClient.Add(task).Save(); err != nil {
			log.Printf("Scheduler: failed to enqueue article generation (%s): %v", level, err)
			continue
		}
		log.Printf("Scheduler: enqueued article generation (%s, %q)", level, topic)
	}
}

func todayTopic() string {
	return articleTopics[time.Now().YearDay()%len(articleTopics)]
}

func (s *DailyScheduler) purgeExpiredOTPCodes() {
	purged, err := s.authService.DeleteExpiredOTPCodes()
	if err != nil {
		log.Printf("Scheduler: failed to purge expired verification codes: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Scheduler: purged %d expired verification codes", purged)
	}
}
