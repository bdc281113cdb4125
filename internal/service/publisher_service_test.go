package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"instapilot/internal/models"
	"instapilot/internal/repository"
	"instapilot/pkg/utils"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

type fakePostRepository struct {
	mu        sync.Mutex
	due       []*models.Post
	dueErr    error
	marked    []string
	markErr   error
}

func (f *fakePostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	return post, nil
}

func (f *fakePostRepository) GetByID(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error) {
	return nil, nil
}

func (f *fakePostRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return nil, nil
}

func (f *fakePostRepository) SetScheduledAt(ctx context.Context, userID, postID uuid.UUID, at time.Time) (*models.Post, error) {
	return nil, nil
}

func (f *fakePostRepository) MarkPublished(ctx context.Context, userID uuid.UUID, creationID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, creationID)
	return nil
}

func (f *fakePostRepository) GetDuePosts(ctx context.Context, now time.Time) ([]*models.Post, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return f.due, nil
}

func (f *fakePostRepository) Remove(ctx context.Context, userID, postID uuid.UUID) error {
	return nil
}

type fakeAccountRepository struct {
	accounts map[uuid.UUID]*models.InstagramAccount
	err      error
}

func (f *fakeAccountRepository) Create(ctx context.Context, account *models.InstagramAccount) error {
	return nil
}

func (f *fakeAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.InstagramAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[userID], nil
}

func (f *fakeAccountRepository) GetUserIDByInstagramID(ctx context.Context, instagramID int64) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (f *fakeAccountRepository) Update(ctx context.Context, account *models.InstagramAccount) error {
	return nil
}

func (f *fakeAccountRepository) Remove(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type fakeAttemptRepository struct {
	mu       sync.Mutex
	attempts []*models.PublishAttempt
}

func (f *fakeAttemptRepository) Create(ctx context.Context, attempt *models.PublishAttempt) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, attempt)
	return int64(len(f.attempts)), nil
}

func (f *fakeAttemptRepository) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PublishAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*models.PublishAttempt
	for _, attempt := range f.attempts {
		if attempt.PostID == postID {
			matched = append(matched, attempt)
		}
	}
	return matched, nil
}

func (f *fakeAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeInstagramService struct {
	mu         sync.Mutex
	published  []string
	failOn     map[string]error
	tokensSeen []string
}

func (f *fakeInstagramService) CreateMediaContainer(ctx context.Context, instagramID int64, accessToken, imageURL, caption string) (string, error) {
	return "container-1", nil
}

func (f *fakeInstagramService) PublishMedia(ctx context.Context, instagramID int64, accessToken, creationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokensSeen = append(f.tokensSeen, accessToken)
	if err, ok := f.failOn[creationID]; ok {
		return err
	}
	f.published = append(f.published, creationID)
	return nil
}

func (f *fakeInstagramService) SendMessage(ctx context.Context, instagramID int64, accessToken, recipientID, text string) error {
	return nil
}

// memPostRepository keeps posts in memory with the same due predicate and
// mark semantics as the SQL store, so sweeps observe their own writes.
type memPostRepository struct {
	mu    sync.Mutex
	posts []*models.Post
}

func (m *memPostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, post)
	return post, nil
}

func (m *memPostRepository) GetByID(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.UserID == userID && post.ID == postID {
			return post, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

func (m *memPostRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return nil, nil
}

func (m *memPostRepository) SetScheduledAt(ctx context.Context, userID, postID uuid.UUID, at time.Time) (*models.Post, error) {
	return nil, nil
}

func (m *memPostRepository) MarkPublished(ctx context.Context, userID uuid.UUID, creationID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.UserID == userID && post.CreationID == creationID {
			if post.PublishedAt == nil {
				ts := at
				post.PublishedAt = &ts
			}
			return nil
		}
	}
	return repository.ErrPostNotFound
}

func (m *memPostRepository) GetDuePosts(ctx context.Context, now time.Time) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*models.Post
	for _, post := range m.posts {
		if post.ScheduledAt != nil && !post.ScheduledAt.After(now) && post.PublishedAt == nil {
			due = append(due, post)
		}
	}
	return due, nil
}

func (m *memPostRepository) Remove(ctx context.Context, userID, postID uuid.UUID) error {
	return nil
}

func encryptedToken(t *testing.T, plaintext string) string {
	t.Helper()
	token, err := utils.Encrypt([]byte(plaintext), []byte(testEncryptionKey))
	if err != nil {
		t.Fatalf("encrypting token: %v", err)
	}
	return token
}

func duePost(userID uuid.UUID, creationID string) *models.Post {
	scheduled := time.Now().Add(-time.Minute)
	return &models.Post{
		ID:          uuid.New(),
		UserID:      userID,
		CreationID:  creationID,
		Caption:     "caption",
		ScheduledAt: &scheduled,
	}
}

func TestPublishPendingPosts(t *testing.T) {
	userID := uuid.New()

	pr := &fakePostRepository{due: []*models.Post{duePost(userID, "c-1"), duePost(userID, "c-2")}}
	ia := &fakeAccountRepository{accounts: map[uuid.UUID]*models.InstagramAccount{
		userID: {UserID: userID, InstagramID: 42, AccessToken: encryptedToken(t, "token-42")},
	}}
	pa := &fakeAttemptRepository{}
	ig := &fakeInstagramService{}

	s := NewPublisherService(pr, ia, pa, ig, testEncryptionKey)
	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("PublishPendingPosts: %v", err)
	}

	if len(ig.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(ig.published))
	}
	if len(pr.marked) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(pr.marked))
	}
	for _, token := range ig.tokensSeen {
		if token != "token-42" {
			t.Errorf("gateway saw token %q, want decrypted token-42", token)
		}
	}
	if len(pa.attempts) != 2 {
		t.Fatalf("expected 2 attempts recorded, got %d", len(pa.attempts))
	}
	for _, attempt := range pa.attempts {
		if !attempt.Succeeded {
			t.Errorf("attempt for post %s recorded as failed: %s", attempt.PostID, attempt.ErrorMessage)
		}
	}
}

func TestPublishPendingPostsNoDuePosts(t *testing.T) {
	pr := &fakePostRepository{}
	s := NewPublisherService(pr, &fakeAccountRepository{}, &fakeAttemptRepository{}, &fakeInstagramService{}, testEncryptionKey)

	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("PublishPendingPosts: %v", err)
	}
}

func TestPublishPendingPostsListError(t *testing.T) {
	listErr := errors.New("db down")
	pr := &fakePostRepository{dueErr: listErr}
	s := NewPublisherService(pr, &fakeAccountRepository{}, &fakeAttemptRepository{}, &fakeInstagramService{}, testEncryptionKey)

	err := s.PublishPendingPosts(context.Background())
	if !errors.Is(err, listErr) {
		t.Fatalf("expected wrapped list error, got %v", err)
	}
}

func TestPublishPendingPostsFailureIsolation(t *testing.T) {
	userID := uuid.New()

	pr := &fakePostRepository{due: []*models.Post{
		duePost(userID, "c-bad"),
		duePost(userID, "c-good"),
	}}
	ia := &fakeAccountRepository{accounts: map[uuid.UUID]*models.InstagramAccount{
		userID: {UserID: userID, InstagramID: 42, AccessToken: encryptedToken(t, "token-42")},
	}}
	pa := &fakeAttemptRepository{}
	ig := &fakeInstagramService{failOn: map[string]error{"c-bad": ErrPublishFailed}}

	s := NewPublisherService(pr, ia, pa, ig, testEncryptionKey)
	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("sweep should swallow per-post failures, got %v", err)
	}

	if len(ig.published) != 1 || ig.published[0] != "c-good" {
		t.Fatalf("expected c-good published despite c-bad failing, got %v", ig.published)
	}
	if len(pr.marked) != 1 || pr.marked[0] != "c-good" {
		t.Fatalf("only the successful post should be marked, got %v", pr.marked)
	}

	if len(pa.attempts) != 2 {
		t.Fatalf("expected 2 attempts recorded, got %d", len(pa.attempts))
	}
	var failures int
	for _, attempt := range pa.attempts {
		if !attempt.Succeeded {
			failures++
			if attempt.ErrorMessage == "" {
				t.Error("failed attempt recorded without error message")
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected 1 failed attempt, got %d", failures)
	}
}

func TestPublishPendingPostsMissingCredentialsSkips(t *testing.T) {
	withCreds := uuid.New()
	withoutCreds := uuid.New()

	pr := &fakePostRepository{due: []*models.Post{
		duePost(withoutCreds, "c-skip"),
		duePost(withCreds, "c-pub"),
	}}
	ia := &fakeAccountRepository{accounts: map[uuid.UUID]*models.InstagramAccount{
		withCreds: {UserID: withCreds, InstagramID: 7, AccessToken: encryptedToken(t, "token-7")},
	}}
	pa := &fakeAttemptRepository{}
	ig := &fakeInstagramService{}

	s := NewPublisherService(pr, ia, pa, ig, testEncryptionKey)
	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("PublishPendingPosts: %v", err)
	}

	if len(ig.published) != 1 || ig.published[0] != "c-pub" {
		t.Fatalf("expected only c-pub published, got %v", ig.published)
	}
	if len(pr.marked) != 1 || pr.marked[0] != "c-pub" {
		t.Fatalf("skipped post must not be marked, got %v", pr.marked)
	}
	// A skip is neither success nor failure: no attempt row.
	if len(pa.attempts) != 1 {
		t.Fatalf("expected 1 attempt recorded, got %d", len(pa.attempts))
	}
}

func TestPublishPendingPostsHonorsDuePredicate(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := &models.Post{ID: uuid.New(), UserID: userID, CreationID: "abc123", ScheduledAt: &past}
	notYet := &models.Post{ID: uuid.New(), UserID: userID, CreationID: "future-1", ScheduledAt: &future}
	done := &models.Post{ID: uuid.New(), UserID: userID, CreationID: "done-1", ScheduledAt: &past, PublishedAt: &past}

	pr := &memPostRepository{posts: []*models.Post{due, notYet, done}}
	ia := &fakeAccountRepository{accounts: map[uuid.UUID]*models.InstagramAccount{
		userID: {UserID: userID, InstagramID: 42, AccessToken: encryptedToken(t, "token-42")},
	}}
	ig := &fakeInstagramService{}

	s := NewPublisherService(pr, ia, &fakeAttemptRepository{}, ig, testEncryptionKey)
	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("PublishPendingPosts: %v", err)
	}

	if len(ig.published) != 1 || ig.published[0] != "abc123" {
		t.Fatalf("only the overdue unpublished post should reach the gateway, got %v", ig.published)
	}
	if due.PublishedAt == nil {
		t.Fatal("due post should be marked published")
	}
	if notYet.PublishedAt != nil {
		t.Fatal("future post must stay pending")
	}
	if !done.PublishedAt.Equal(past) {
		t.Fatalf("published post timestamp changed: %s", done.PublishedAt)
	}
}

func TestPublishPendingPostsSecondSweepIsNoop(t *testing.T) {
	userID := uuid.New()
	past := time.Now().Add(-time.Hour)

	post := &models.Post{ID: uuid.New(), UserID: userID, CreationID: "abc123", ScheduledAt: &past}
	pr := &memPostRepository{posts: []*models.Post{post}}
	ia := &fakeAccountRepository{accounts: map[uuid.UUID]*models.InstagramAccount{
		userID: {UserID: userID, InstagramID: 42, AccessToken: encryptedToken(t, "token-42")},
	}}
	ig := &fakeInstagramService{}

	s := NewPublisherService(pr, ia, &fakeAttemptRepository{}, ig, testEncryptionKey)

	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if post.PublishedAt == nil {
		t.Fatal("post should be published after the first sweep")
	}

	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(ig.published) != 1 {
		t.Fatalf("gateway invoked %d times across two sweeps, want exactly 1", len(ig.published))
	}
}

func TestPublishPendingPostsMarkFailureStillIsolated(t *testing.T) {
	userID := uuid.New()
	markErr := errors.New("write lost")

	pr := &fakePostRepository{
		due:     []*models.Post{duePost(userID, "c-1")},
		markErr: markErr,
	}
	ia := &fakeAccountRepository{accounts: map[uuid.UUID]*models.InstagramAccount{
		userID: {UserID: userID, InstagramID: 42, AccessToken: encryptedToken(t, "token-42")},
	}}
	pa := &fakeAttemptRepository{}
	ig := &fakeInstagramService{}

	s := NewPublisherService(pr, ia, pa, ig, testEncryptionKey)
	if err := s.PublishPendingPosts(context.Background()); err != nil {
		t.Fatalf("sweep should swallow mark failures, got %v", err)
	}

	if len(ig.published) != 1 {
		t.Fatalf("remote publish should still have happened, got %v", ig.published)
	}
	if len(pa.attempts) != 1 || pa.attempts[0].Succeeded {
		t.Fatalf("mark failure must record a failed attempt, got %+v", pa.attempts)
	}
}
