package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/maheshrc27/instaflow/pkg/utils"
)

const (
	maxCarouselItems    = 10
	defaultPollInterval = 5 * time.Second
	defaultPollAttempts = 24
)

var (
	ErrCarouselSize      = fmt.Errorf("carousel posts need between 2 and %d media items", maxCarouselItems)
	ErrUnknownMediaType  = errors.New("unknown media type")
	ErrContainerFailed   = errors.New("media container processing failed")
	ErrContainerNotReady = errors.New("media container is still processing")
)

// PublishOutcome is what a publisher knows about a post right after it went
// live. Metrics are the initial values recorded in post_performances.
type PublishOutcome struct {
	ExternalPostID string
	Likes          int64
	Comments       int64
	Reach          int64
	Saves          int64
	EngagementRate float64
}

type Publisher interface {
	Publish(ctx context.Context, post *models.ScheduledPost, acc *models.InstagramAccount) (*PublishOutcome, error)
}

type FollowerSource interface {
	FollowersCount(ctx context.Context, acc *models.InstagramAccount) (int64, error)
}

type InstagramService interface {
	Publisher
	FollowerSource
}

type instagramService struct {
	graph        *GraphClient
	igGraph      *GraphClient
	media        MediaService
	cipher       *utils.TokenCipher
	now          func() time.Time
	pollInterval time.Duration
	pollAttempts int
}

// NewInstagramService publishes through graph for accounts connected with
// Facebook Login and through igGraph for accounts connected with Instagram Login.
func NewInstagramService(graph, igGraph *GraphClient, media MediaService, cipher *utils.TokenCipher) InstagramService {
	return &instagramService{
		graph:        graph,
		igGraph:      igGraph,
		media:        media,
		cipher:       cipher,
		now:          time.Now,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
}

func (s *instagramService) client(acc *models.InstagramAccount) *GraphClient {
	if acc.ConnectedWithInstagramLogin() && s.igGraph != nil {
		return s.igGraph
	}
	return s.graph
}

func (s *instagramService) accessToken(acc *models.InstagramAccount) (string, error) {
	if acc == nil {
		return "", ErrAccountNotFound
	}
	if acc.AccessToken == "" {
		return "", ErrMissingToken
	}
	if acc.TokenExpiresAt != nil && !acc.TokenExpiresAt.After(s.now()) {
		return "", ErrTokenExpired
	}

	token, err := s.cipher.Open(acc.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to open stored token: %w", err)
	}
	return token, nil
}

// Publish creates the media container(s) for the post and publishes them.
// The Graph API reports no engagement at publish time, so metrics are zero.
func (s *instagramService) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.InstagramAccount) (*PublishOutcome, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return nil, err
	}

	urls, err := s.media.Resolve(ctx, post.MediaURLs)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, ErrNoMedia
	}

	caption := buildCaption(post.Caption, post.Hashtags)
	igID := acc.InstagramAccountID
	g := s.client(acc)

	var creationID string
	switch post.MediaType {
	case models.MediaTypeImage:
		creationID, err = s.createContainer(ctx, g, igID, token, map[string]string{
			"image_url": urls[0],
			"caption":   caption,
		})
	case models.MediaTypeVideo:
		creationID, err = s.createContainer(ctx, g, igID, token, map[string]string{
			"media_type": "REELS",
			"video_url":  urls[0],
			"caption":    caption,
		})
		if err == nil {
			err = s.waitForContainer(ctx, g, creationID, token)
		}
	case models.MediaTypeCarousel:
		creationID, err = s.createCarousel(ctx, g, igID, token, urls, caption)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMediaType, post.MediaType)
	}
	if err != nil {
		return nil, err
	}

	var published transfer.MediaContainerResponse
	err = g.Post(ctx, "/"+igID+"/media_publish", map[string]string{
		"creation_id":  creationID,
		"access_token": token,
	}, &published)
	if err != nil {
		return nil, fmt.Errorf("failed to publish container %s: %w", creationID, err)
	}
	if published.ID == "" {
		return nil, errors.New("publish response has no media id")
	}

	slog.Info("post published", "post_id", post.ID, "instagram_account_id", igID, "media_id", published.ID)

	return &PublishOutcome{ExternalPostID: published.ID}, nil
}

func (s *instagramService) createContainer(ctx context.Context, g *GraphClient, igID, token string, form map[string]string) (string, error) {
	form["access_token"] = token

	var container transfer.MediaContainerResponse
	if err := g.Post(ctx, "/"+igID+"/media", form, &container); err != nil {
		return "", fmt.Errorf("failed to create media container: %w", err)
	}
	if container.ID == "" {
		return "", errors.New("no media container id returned")
	}
	return container.ID, nil
}

func (s *instagramService) createCarousel(ctx context.Context, g *GraphClient, igID, token string, urls []string, caption string) (string, error) {
	if len(urls) < 2 || len(urls) > maxCarouselItems {
		return "", ErrCarouselSize
	}

	children := make([]string, 0, len(urls))
	for _, u := range urls {
		form := map[string]string{"is_carousel_item": "true"}
		isVideo := s.media.Kind(u) == models.MediaTypeVideo
		if isVideo {
			form["media_type"] = "VIDEO"
			form["video_url"] = u
		} else {
			form["image_url"] = u
		}

		id, err := s.createContainer(ctx, g, igID, token, form)
		if err != nil {
			return "", err
		}
		if isVideo {
			if err := s.waitForContainer(ctx, g, id, token); err != nil {
				return "", err
			}
		}
		children = append(children, id)
	}

	return s.createContainer(ctx, g, igID, token, map[string]string{
		"media_type": "CAROUSEL",
		"children":   strings.Join(children, ","),
		"caption":    caption,
	})
}

// waitForContainer polls a video container until the platform finished
// processing it. Polling stops early when the next poll would land past the
// context deadline, so a slow container is reported as not ready.
func (s *instagramService) waitForContainer(ctx context.Context, g *GraphClient, containerID, token string) error {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		var status transfer.ContainerStatusResponse
		err := g.Get(ctx, "/"+containerID, map[string]string{
			"fields":       "status_code",
			"access_token": token,
		}, &status)
		if err != nil {
			return fmt.Errorf("failed to read container status: %w", err)
		}

		switch status.StatusCode {
		case transfer.ContainerStatusFinished:
			return nil
		case transfer.ContainerStatusError, transfer.ContainerStatusExpired:
			return fmt.Errorf("%w: container %s is %s", ErrContainerFailed, containerID, status.StatusCode)
		}

		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= s.pollInterval {
			return fmt.Errorf("%w: %s did not finish before the publish deadline", ErrContainerNotReady, containerID)
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w: %s", ErrContainerNotReady, containerID)
}

func (s *instagramService) FollowersCount(ctx context.Context, acc *models.InstagramAccount) (int64, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return 0, err
	}

	var profile transfer.InstagramProfile
	err = s.client(acc).Get(ctx, "/"+acc.InstagramAccountID, map[string]string{
		"fields":       "followers_count",
		"access_token": token,
	}, &profile)
	if err != nil {
		return 0, err
	}
	return profile.FollowersCount, nil
}

func buildCaption(caption string, hashtags []string) string {
	tags := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag != "" {
			tags = append(tags, "#"+tag)
		}
	}

	if len(tags) == 0 {
		return caption
	}
	if caption == "" {
		return strings.Join(tags, " ")
	}
	return caption + "\n\n" + strings.Join(tags, " ")
}

// SimulatedPublisher stands in for the platform when PUBLISH_MODE=simulate.
// It never calls out and invents an external id with plausible metrics.
type SimulatedPublisher struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewSimulatedPublisher(seed int64) *SimulatedPublisher {
	return &SimulatedPublisher{
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

func (p *SimulatedPublisher) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.InstagramAccount) (*PublishOutcome, error) {
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &PublishOutcome{
		ExternalPostID: fmt.Sprintf("ig_%d_%d", p.now().UnixMilli(), post.ID),
		Likes:          int64(p.rnd.Intn(500) + 50),
		Comments:       int64(p.rnd.Intn(50) + 5),
		Reach:          int64(p.rnd.Intn(2000) + 500),
		Saves:          int64(p.rnd.Intn(100) + 10),
		EngagementRate: p.rnd.Float64()*5 + 2,
	}, nil
}
