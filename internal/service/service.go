package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"torgmailru/client/internal/client"
	"torgmailru/client/internal/config"
	"torgmailru/client/internal/domain/task"
	"torgmailru/client/internal/listing"
	"torgmailru/client/internal/normalize"
	"torgmailru/client/internal/queue"
	"torgmailru/client/internal/repository"
	"torgmailru/client/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ListingSource starts listings; *api.API implements it
type ListingSource interface {
	Listing(resource string, params client.Params) *listing.Listing
}

type Options struct {
	MaxItems    int           // per listing; 0 means unbounded
	MaxAttempts int           // failed runs before a listing is dropped
	MinIdleTime time.Duration // pending time before a message is auto-claimed
	PollTimeout time.Duration // how long a worker blocks waiting for a task
	RetryDelay  time.Duration // pause after the queue fails to hand out a task
}

func OptionsFromConfig(cfg config.CrawlConfig) Options {
	return Options{
		MaxItems:    cfg.MaxItems,
		MaxAttempts: cfg.MaxAttempts,
		MinIdleTime: cfg.MinIdleTime,
		PollTimeout: 5 * time.Second,
		RetryDelay:  time.Second,
	}
}

type Service struct {
	source      ListingSource
	repository  repository.ItemRepository
	queue       queue.Queue
	checkpoints state.Checkpoints
	opts        Options
}

func NewService(
	source ListingSource,
	repository repository.ItemRepository,
	queue queue.Queue,
	checkpoints state.Checkpoints,
	opts Options,
) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.MinIdleTime <= 0 {
		opts.MinIdleTime = 2 * time.Minute
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Service{
		source:      source,
		repository:  repository,
		queue:       queue,
		checkpoints: checkpoints,
		opts:        opts,
	}
}

// EnqueueResources adds one listing task per configured resource
func (s *Service) EnqueueResources(ctx context.Context, resources []config.ResourceConfig) error {
	for _, res := range resources {
		if _, err := s.queue.AddTask(ctx, &task.ListingTask{Resource: res.Path, Params: res.Params}); err != nil {
			return fmt.Errorf("enqueue %s: %w", res.Path, err)
		}
		log.Infof("🔄 Enqueued listing %s", res.Path)
	}
	return nil
}

func listingKey(resource string, params map[string]string) string {
	p := make(client.Params, len(params))
	for k, v := range params {
		if k == listing.PageParam {
			continue
		}
		p[k] = v
	}
	return resource + "?" + p.Key()
}

// CrawlListing drains one listing into the repository, resuming from the
// checkpointed page and checkpointing each fully stored page. It returns the
// number of items stored by this run.
func (s *Service) CrawlListing(ctx context.Context, resource string, params map[string]string) (int, error) {
	key := listingKey(resource, params)

	p := make(client.Params, len(params)+1)
	for k, v := range params {
		p[k] = v
	}

	resumeFrom, err := s.checkpoints.NextPage(ctx, key)
	if err != nil {
		return 0, err
	}
	if resumeFrom > 1 {
		p[listing.PageParam] = resumeFrom
		log.Infof("🔄 Continue %s from page %d", resource, resumeFrom)
	}

	l := s.source.Listing(resource, p)
	stored := 0
	for s.opts.MaxItems <= 0 || stored < s.opts.MaxItems {
		page, fetches := l.NextPage(), l.Fetches()

		item, err := l.Next(ctx)
		if errors.Is(err, listing.ErrDone) {
			break
		}
		if err != nil {
			return stored, err
		}

		// a new page was fetched, so every item of the previous one is stored
		if fetches > 0 && l.Fetches() > fetches {
			if err := s.checkpoints.SetNextPage(ctx, key, page); err != nil {
				log.Warnf("⚠️ %v", err)
			}
		}

		if err := s.repository.SaveItem(ctx, resource, itemKey(item), item); err != nil {
			return stored, err
		}
		stored++
	}

	if l.HasMore() {
		log.Warnf("⚠️ Stopped %s after %d items (crawl.max_items)", resource, stored)
	}
	if err := s.checkpoints.Clear(ctx, key); err != nil {
		log.Warnf("⚠️ %v", err)
	}

	log.Infof("✅ Completed %s: %d items stored, %d pages fetched", resource, stored, l.Fetches())
	return stored, nil
}

// itemKey is the item's id, or a content hash for items without one
func itemKey(item normalize.Node) string {
	if id, ok := item.Get("id"); ok {
		if s, ok := id.AsString(); ok && s != "" {
			return s
		}
		if n, ok := id.AsInt(); ok {
			return strconv.FormatInt(n, 10)
		}
	}
	data, _ := item.MarshalJSON()
	sum := sha1.Sum(data)
	return "sha1:" + hex.EncodeToString(sum[:])
}

// RunWorkers consumes listing and retry tasks until ctx is cancelled
func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, max(1, numWorkers), task.TypeListing, "main")
	s.runWorkersForStream(ctx, &wg, max(1, numWorkers/2), task.TypeListingRetry, "retry")

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, taskType, workerType string) {
	// Auto-claimer for this stream
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.opts.MinIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%s", workerType)
				claimedMessages, err := s.queue.AutoClaim(ctx, consumer, taskType, s.opts.MinIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", taskType, err)
					continue
				}
				for _, msg := range claimedMessages {
					log.Infof("🔄 Auto-claimed message %s from %s stream", msg.ID, workerType)
					if err := s.processMessage(ctx, &msg); err != nil {
						log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				default:
				}

				msg, err := s.queue.GetTask(ctx, consumer, taskType, s.opts.PollTimeout)
				if err != nil {
					if ctx.Err() == nil {
						log.Errorf("❌ Failed to get task from %s: %v", taskType, err)
						select {
						case <-ctx.Done():
						case <-time.After(s.opts.RetryDelay):
						}
					}
					continue
				}
				if msg == nil {
					continue
				}
				if err := s.processMessage(ctx, msg); err != nil {
					log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
				}
			}
		}(i + 1)
	}
}

func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	var resource string
	var params map[string]string
	var failedAttempts int

	switch taskType {
	case task.TypeListing:
		listingTask, err := task.UnmarshalTask[*task.ListingTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal listing task data: %w", err)
		}
		resource, params = listingTask.Resource, listingTask.Params

	case task.TypeListingRetry:
		retryTask, err := task.UnmarshalTask[*task.ListingRetryTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal retry task data: %w", err)
		}
		log.Infof("🔄 Retrying %s (attempt %d), last error: %s", retryTask.Resource, retryTask.Attempt+1, retryTask.Error)
		resource, params, failedAttempts = retryTask.Resource, retryTask.Params, retryTask.Attempt

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	// A crawl can outlive crawl.min_idle_time, so the message is acked before
	// it starts; otherwise the auto-claimer would hand it to a second worker.
	// Failures come back through the retry stream and resume from the checkpoint.
	if err := s.queue.AckTask(ctx, taskType, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	s.runListing(ctx, resource, params, failedAttempts)
	return nil
}

// runListing crawls a listing and schedules a retry on failure while
// attempts remain. failedAttempts counts the runs that already failed.
func (s *Service) runListing(ctx context.Context, resource string, params map[string]string, failedAttempts int) {
	_, err := s.CrawlListing(ctx, resource, params)
	if err == nil {
		return
	}

	attempt := failedAttempts + 1
	if attempt >= s.opts.MaxAttempts {
		log.Errorf("❌ Giving up on %s after %d attempts: %v", resource, attempt, err)
		return
	}

	retryTask := &task.ListingRetryTask{
		Resource: resource,
		Params:   params,
		Attempt:  attempt,
		Error:    err.Error(),
	}
	if _, addErr := s.queue.AddTask(ctx, retryTask); addErr != nil {
		log.Errorf("❌ Failed to add retry task for %s: %v", resource, addErr)
		return
	}
	log.Warnf("🔄 Added %s to retry queue due to error: %v", resource, err)
}
