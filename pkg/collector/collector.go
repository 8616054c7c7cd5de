package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"vkprofiler/pkg/config"
	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/logger"
	"vkprofiler/pkg/models"
	"vkprofiler/pkg/retry"
	"vkprofiler/pkg/vk"
)

// API is the subset of the VK client the collector needs
type API interface {
	Execute(ctx context.Context, method string, params url.Values) (json.RawMessage, error)
}

// Collector drains VK's offset-paginated listings for one user at a time.
// Every step runs strictly in sequence; there is one request in flight.
type Collector struct {
	api       API
	cfg       config.CollectorConfig
	pageDelay time.Duration
	logger    logger.Logger
	observer  Observer
}

// New creates a Collector. Zero values in cfg fall back to the defaults and
// page sizes above what VK serves are lowered to VK's limits, since offsets
// advance by the configured size.
func New(api API, cfg config.CollectorConfig, pageDelay time.Duration, log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}

	defaults := config.DefaultConfig().Collector
	if cfg.PostsPageSize <= 0 {
		cfg.PostsPageSize = defaults.PostsPageSize
	}
	if cfg.SubscriptionsPageSize <= 0 {
		cfg.SubscriptionsPageSize = defaults.SubscriptionsPageSize
	}
	if cfg.SubscriptionsMaxOffset <= 0 {
		cfg.SubscriptionsMaxOffset = defaults.SubscriptionsMaxOffset
	}
	if cfg.GroupsBatchSize <= 0 {
		cfg.GroupsBatchSize = defaults.GroupsBatchSize
	}
	cfg.PostsPageSize = min(cfg.PostsPageSize, vk.MaxWallCount)
	cfg.SubscriptionsPageSize = min(cfg.SubscriptionsPageSize, vk.MaxSubscriptionsCount)
	cfg.GroupsBatchSize = min(cfg.GroupsBatchSize, vk.MaxGroupIDs)

	return &Collector{
		api:       api,
		cfg:       cfg,
		pageDelay: pageDelay,
		logger:    log.WithField("component", "collector"),
	}
}

// ResolveUser maps a screen name to its numeric id
func (c *Collector) ResolveUser(ctx context.Context, screenName string) (int64, error) {
	raw, err := c.api.Execute(ctx, vk.MethodUsersGet, vk.UsersGetParams(screenName))
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %s: %w", screenName, err)
	}

	var users []vk.User
	if err := vk.Decode(raw, &users); err != nil {
		return 0, fmt.Errorf("failed to decode users of %s: %w", screenName, err)
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("%w: %s", errs.ErrUserNotFound, screenName)
	}

	return users[0].ID, nil
}

// Posts returns the non-empty texts of every wall post of owner, in the
// order VK serves them. Reposts without own text contribute the texts of
// their copy history. An API error ends the walk; what was gathered so far
// is returned.
func (c *Collector) Posts(ctx context.Context, ownerID int64) []string {
	var posts []string
	size := c.cfg.PostsPageSize

	for offset := 0; ; offset += size {
		raw, err := c.api.Execute(ctx, vk.MethodWallGet, vk.WallGetParams(ownerID, size, offset))
		if err != nil {
			logger.LogCollectionStopped(c.logger, "posts", ownerID, len(posts), err)
			break
		}

		var page vk.WallPage
		if err := vk.Decode(raw, &page); err != nil {
			logger.LogCollectionStopped(c.logger, "posts", ownerID, len(posts), err)
			break
		}
		if len(page.Items) == 0 {
			break
		}
		logger.LogPage(c.logger, vk.MethodWallGet, ownerID, offset, len(page.Items))

		for _, item := range page.Items {
			if body := item.Body(); body != "" {
				posts = append(posts, body)
			}
		}

		if err := c.pause(ctx); err != nil {
			break
		}
	}

	return posts
}

// SubscriptionIDs returns the ids of the communities userID follows. No page
// is requested past the configured offset ceiling.
func (c *Collector) SubscriptionIDs(ctx context.Context, userID int64) []int64 {
	var ids []int64
	size := c.cfg.SubscriptionsPageSize

	for offset := 0; offset <= c.cfg.SubscriptionsMaxOffset; offset += size {
		raw, err := c.api.Execute(ctx, vk.MethodUsersGetSubscriptions, vk.SubscriptionsParams(userID, size, offset))
		if err != nil {
			logger.LogCollectionStopped(c.logger, "subscriptions", userID, len(ids), err)
			break
		}

		var page vk.Subscriptions
		if err := vk.Decode(raw, &page); err != nil {
			logger.LogCollectionStopped(c.logger, "subscriptions", userID, len(ids), err)
			break
		}
		if len(page.Groups.Items) == 0 {
			break
		}
		logger.LogPage(c.logger, vk.MethodUsersGetSubscriptions, userID, offset, len(page.Groups.Items))

		ids = append(ids, page.Groups.Items...)

		if err := c.pause(ctx); err != nil {
			break
		}
	}

	return ids
}

// GroupNames resolves community ids to names in batches. A failed batch is
// logged and skipped.
func (c *Collector) GroupNames(ctx context.Context, ids []int64) []string {
	var names []string
	size := c.cfg.GroupsBatchSize

	for start := 0; start < len(ids); start += size {
		batch := ids[start:min(start+size, len(ids))]

		raw, err := c.api.Execute(ctx, vk.MethodGroupsGetByID, vk.GroupsByIDParams(batch))
		if err != nil {
			c.logger.WithError(err).WarnWithFields("Skipping group batch", map[string]interface{}{
				"offset": start,
				"size":   len(batch),
			})
			continue
		}

		var resp vk.GroupsByID
		if err := vk.Decode(raw, &resp); err != nil {
			c.logger.WithError(err).WarnWithFields("Skipping undecodable group batch", map[string]interface{}{
				"offset": start,
			})
			continue
		}

		for _, group := range resp.Groups {
			if group.Name != "" {
				names = append(names, group.Name)
			}
		}
	}

	return names
}

// Collect gathers one user: id, then posts, then subscriptions, then names
func (c *Collector) Collect(ctx context.Context, screenName string) (*models.UserRecord, error) {
	c.emit(Event{User: screenName, Stage: StageResolve})
	id, err := c.ResolveUser(ctx, screenName)
	if err != nil {
		c.emit(Event{User: screenName, Stage: StageFailed, Err: err})
		return nil, err
	}

	log := c.logger.WithFields(map[string]interface{}{"user": screenName, "user_id": id})
	log.Info("Collecting user")

	c.emit(Event{User: screenName, UserID: id, Stage: StagePosts})
	posts := c.Posts(ctx, id)

	c.emit(Event{User: screenName, UserID: id, Stage: StageSubscriptions, Posts: len(posts)})
	ids := c.SubscriptionIDs(ctx, id)

	c.emit(Event{User: screenName, UserID: id, Stage: StageGroups, Posts: len(posts)})
	groups := c.GroupNames(ctx, ids)

	log.InfoWithFields("User collected", map[string]interface{}{
		"posts":  len(posts),
		"groups": len(groups),
	})
	c.emit(Event{User: screenName, UserID: id, Stage: StageDone, Posts: len(posts), Groups: len(groups)})

	return &models.UserRecord{
		ID:         id,
		ScreenName: screenName,
		Posts:      posts,
		Groups:     groups,
	}, nil
}

// CollectAll collects users one after another. Users that cannot be
// resolved are logged and left out.
func (c *Collector) CollectAll(ctx context.Context, screenNames []string) []models.UserRecord {
	records := make([]models.UserRecord, 0, len(screenNames))

	for _, name := range screenNames {
		record, err := c.Collect(ctx, name)
		if err != nil {
			c.logger.WithError(err).WithField("user", name).Warn("Skipping user")
			continue
		}
		records = append(records, *record)
	}

	return records
}

// pause applies the courtesy delay between pages
func (c *Collector) pause(ctx context.Context) error {
	return retry.Wait(ctx, c.pageDelay)
}
