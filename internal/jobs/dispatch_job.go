package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/repository"
	"github.com/maheshrc27/instaflow/internal/service"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/maheshrc27/instaflow/pkg/utils"
)

const dispatchBatchSize = 100

type DispatchJob struct {
	posts          repository.ScheduledPostRepository
	accounts       repository.InstagramAccountRepository
	perf           repository.PostPerformanceRepository
	publisher      service.Publisher
	publishTimeout time.Duration
	now            func() time.Time
	guard          runGuard
}

func NewDispatchJob(
	posts repository.ScheduledPostRepository,
	accounts repository.InstagramAccountRepository,
	perf repository.PostPerformanceRepository,
	publisher service.Publisher,
	publishTimeout time.Duration) *DispatchJob {
	return &DispatchJob{
		posts:          posts,
		accounts:       accounts,
		perf:           perf,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		now:            time.Now,
	}
}

// Run publishes every due post, oldest first. Only the initial select can fail
// the run; each post's outcome is recorded on its own row.
func (j *DispatchJob) Run(ctx context.Context) (*transfer.DispatchResult, error) {
	release, err := j.guard.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	runID := utils.NewRunID("dispatch")

	due, err := j.posts.ListDue(ctx, j.now(), dispatchBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list due posts: %w", err)
	}

	if len(due) == 0 {
		return &transfer.DispatchResult{Message: "No posts to process", Errors: []string{}}, nil
	}

	result := &transfer.DispatchResult{Message: "Processing complete", Errors: []string{}}

	for _, post := range due {
		claimed, err := j.posts.Claim(ctx, post.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Post %d: %v", post.ID, err))
			slog.Error("failed to claim post", "run_id", runID, "post_id", post.ID, "error", err)
			continue
		}
		if !claimed {
			slog.Info("post already claimed, skipping", "run_id", runID, "post_id", post.ID)
			continue
		}

		if err := j.publish(ctx, post); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Post %d: %v", post.ID, err))
			slog.Error("failed to publish post", "run_id", runID, "post_id", post.ID, "error", err)

			if markErr := j.posts.MarkFailed(ctx, post.ID, err.Error()); markErr != nil {
				slog.Error("failed to mark post failed", "run_id", runID, "post_id", post.ID, "error", markErr)
			}
			continue
		}

		result.Processed++
	}

	slog.Info("dispatch finished", "run_id", runID, "processed", result.Processed, "failed", result.Failed)
	return result, nil
}

func (j *DispatchJob) publish(ctx context.Context, post *models.ScheduledPost) error {
	acc, err := j.accounts.GetByID(ctx, post.InstagramAccountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if acc == nil {
		return service.ErrAccountNotFound
	}

	publishCtx, cancel := context.WithTimeout(ctx, j.publishTimeout)
	defer cancel()

	outcome, err := j.publisher.Publish(publishCtx, post, acc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("publish timed out after %s: %w", j.publishTimeout, err)
		}
		return err
	}

	publishedAt := j.now()
	if err := j.posts.MarkPublished(ctx, post.ID, publishedAt, outcome.ExternalPostID); err != nil {
		return fmt.Errorf("failed to mark post published: %w", err)
	}

	_, err = j.perf.Create(ctx, &models.PostPerformance{
		InstagramAccountID: post.InstagramAccountID,
		ExternalPostID:     outcome.ExternalPostID,
		PostedAt:           publishedAt,
		Likes:              outcome.Likes,
		Comments:           outcome.Comments,
		Reach:              outcome.Reach,
		Saves:              outcome.Saves,
		EngagementRate:     outcome.EngagementRate,
	})
	if err != nil {
		slog.Error("failed to record post performance", "post_id", post.ID, "error", err)
	}

	return nil
}

// ProcessScheduledPosts is the cron entry point.
func (j *DispatchJob) ProcessScheduledPosts() {
	result, err := j.Run(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	slog.Info(result.Message, "processed", result.Processed, "failed", result.Failed)
}
