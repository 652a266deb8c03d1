// Package firestore implements the store.Store interface against Cloud
// Firestore, using the per-user document layout users/{uid}/tasks and
// users/{uid}/categories.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	fs "cloud.google.com/go/firestore"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"smartodo/internal/config"
	"smartodo/internal/store"
	"smartodo/internal/task"
)

const (
	// APITimeout is the timeout for one-shot write calls. Subscriptions are
	// long-lived and bounded by their context instead.
	APITimeout = 5 * time.Second

	// OAuth scope for Firestore access.
	datastoreScope = "https://www.googleapis.com/auth/datastore"
)

// Client implements store.Store using Cloud Firestore.
type Client struct {
	fs  *fs.Client
	log *slog.Logger
}

// New creates a Firestore client authenticated with the stored OAuth token.
// Requires oauth_client.json and token.json in the config dir, and a project
// id in settings.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("no project id configured (set projectId in %s)", cfg.SettingsPath())
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, datastoreScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source auto-refreshes for the lifetime of the subscriptions.
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	client, err := fs.NewClient(ctx, cfg.ProjectID, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &Client{fs: client, log: cfg.Logger()}, nil
}

// NewWithClient wraps an existing Firestore client (for testing against the
// emulator).
func NewWithClient(client *fs.Client, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{fs: client, log: log}
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) taskCol(userID string) *fs.CollectionRef {
	return c.fs.Collection("users/" + userID + "/tasks")
}

func (c *Client) categoryCol(userID string) *fs.CollectionRef {
	return c.fs.Collection("users/" + userID + "/categories")
}

// SubscribeTasks opens a snapshot listener ordered createdAt descending and
// delivers the full normalized result set on every change.
func (c *Client) SubscribeTasks(ctx context.Context, userID string, fn store.TaskFunc) (store.Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)

	it := c.taskCol(userID).OrderBy("createdAt", fs.Desc).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					c.log.Warn("task feed terminated", "user", userID, "error", wrapError(err))
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				c.log.Warn("task snapshot read failed", "user", userID, "error", wrapError(err))
				continue
			}
			seq := make([]task.Task, 0, len(docs))
			for _, doc := range docs {
				seq = append(seq, taskFromDoc(doc.Ref.ID, doc.Data()))
			}
			fn(seq)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// SubscribeCategories opens a snapshot listener ordered name ascending.
func (c *Client) SubscribeCategories(ctx context.Context, userID string, fn store.CategoryFunc) (store.Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)

	it := c.categoryCol(userID).OrderBy("name", fs.Asc).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					c.log.Warn("category feed terminated", "user", userID, "error", wrapError(err))
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				c.log.Warn("category snapshot read failed", "user", userID, "error", wrapError(err))
				continue
			}
			seq := make([]task.Category, 0, len(docs))
			for _, doc := range docs {
				data := doc.Data()
				seq = append(seq, task.Category{
					ID:        doc.Ref.ID,
					Name:      asString(data["name"]),
					CreatedAt: asMillis(data["createdAt"]),
				})
			}
			fn(seq)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// AddTask implements store.Store. Firestore assigns the document id and the
// server assigns createdAt.
func (c *Client) AddTask(ctx context.Context, userID string, t task.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	doc := map[string]any{
		"title":     t.Title,
		"notes":     t.Notes,
		"category":  t.Category,
		"priority":  string(t.Priority),
		"completed": false,
		"createdAt": fs.ServerTimestamp,
	}
	if t.Due != nil {
		doc["due"] = *t.Due
	}

	if _, _, err := c.taskCol(userID).Add(ctx, doc); err != nil {
		return wrapError(err)
	}
	return nil
}

// UpdateTask implements store.Store.
func (c *Client) UpdateTask(ctx context.Context, userID, taskID string, updates map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	fields := make([]fs.Update, 0, len(updates))
	for key, v := range updates {
		fields = append(fields, fs.Update{Path: key, Value: v})
	}

	if _, err := c.taskCol(userID).Doc(taskID).Update(ctx, fields); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteTask implements store.Store.
func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := c.taskCol(userID).Doc(taskID).Delete(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

// AddCategory implements store.Store.
func (c *Client) AddCategory(ctx context.Context, userID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, _, err := c.categoryCol(userID).Add(ctx, map[string]any{
		"name":      name,
		"createdAt": fs.ServerTimestamp,
	})
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// UpdateCategory implements store.Store.
func (c *Client) UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	fields := make([]fs.Update, 0, len(updates))
	for key, v := range updates {
		fields = append(fields, fs.Update{Path: key, Value: v})
	}

	if _, err := c.categoryCol(userID).Doc(categoryID).Update(ctx, fields); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteCategory implements store.Store.
func (c *Client) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := c.categoryCol(userID).Doc(categoryID).Delete(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError translates gRPC status codes into the store's error taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %v", store.ErrAuth, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	default:
		return err
	}
}

var _ store.Store = (*Client)(nil)
