package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

// memDB is an in-memory stand-in for the Postgres-backed repositories.
// InTx snapshots the tables and restores them when fn fails.
type memDB struct {
	mu sync.Mutex

	nextID        int64
	users         map[int64]models.User
	tasks         map[int64]models.Task
	shares        map[int64]models.SharedTask
	comments      map[int64]models.Comment
	notifications map[int64]models.Notification
	resets        map[int64]models.PasswordReset

	failNotificationCreate error
	clock                  time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:         map[int64]models.User{},
		tasks:         map[int64]models.Task{},
		shares:        map[int64]models.SharedTask{},
		comments:      map[int64]models.Comment{},
		notifications: map[int64]models.Notification{},
		resets:        map[int64]models.PasswordReset{},
		clock:         time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

// tick returns a strictly increasing timestamp so ordering by created_at is stable.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func notFound(table string) error {
	return &repositories.Error{Op: "mem", Table: table, Err: repositories.ErrNotFound}
}

func duplicate(table, constraint string) error {
	return &repositories.Error{Op: "mem", Table: table, Constraint: constraint, Err: repositories.ErrDuplicate}
}

func (db *memDB) Store() repositories.Store {
	return repositories.Store{
		Users:          memUsers{db},
		Tasks:          memTasks{db},
		Shares:         memShares{db},
		Comments:       memComments{db},
		Notifications:  memNotifications{db},
		PasswordResets: memResets{db},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) InTx(ctx context.Context, fn func(repositories.Store) error) error {
	db.mu.Lock()
	users, tasks, shares := copyMap(db.users), copyMap(db.tasks), copyMap(db.shares)
	comments, notifications, resets := copyMap(db.comments), copyMap(db.notifications), copyMap(db.resets)
	db.mu.Unlock()

	if err := fn(db.Store()); err != nil {
		db.mu.Lock()
		db.users, db.tasks, db.shares = users, tasks, shares
		db.comments, db.notifications, db.resets = comments, notifications, resets
		db.mu.Unlock()
		return err
	}
	return nil
}

// --- seed helpers

func (db *memDB) addUser(username string) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := models.User{
		ID:        db.id(),
		Username:  username,
		Email:     strings.ToLower(username) + "@example.com",
		Role:      models.RoleUser,
		CreatedAt: db.tick(),
	}
	u.UpdatedAt = u.CreatedAt
	db.users[u.ID] = u
	return u
}

func (db *memDB) addTask(ownerID int64, title string) models.Task {
	db.mu.Lock()
	defer db.mu.Unlock()
	t := models.Task{
		ID:       db.id(),
		OwnerID:  ownerID,
		Title:    title,
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
	}
	t.CreatedAt = db.tick()
	t.UpdatedAt = t.CreatedAt
	db.tasks[t.ID] = t
	return t
}

func (db *memDB) addShare(taskID, userID int64, perm models.Permission) models.SharedTask {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := models.SharedTask{ID: db.id(), TaskID: taskID, UserID: userID, Permission: perm, CreatedAt: db.tick()}
	db.shares[s.ID] = s
	return s
}

func (db *memDB) notificationsFor(userID int64) []models.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.Notification
	for _, n := range db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (db *memDB) countShares() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.shares)
}

// --- users

type memUsers struct{ db *memDB }

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return duplicate("users", "users_email_key")
		}
		if u.Username == user.Username {
			return duplicate("users", "users_username_key")
		}
	}
	user.ID = r.db.id()
	user.CreatedAt = r.db.tick()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, notFound("users")
	}
	return &u, nil
}

func (r memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("users")
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r memUsers) List(ctx context.Context) ([]models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) Update(ctx context.Context, id int64, patch repositories.UserPatch) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, notFound("users")
	}
	for _, other := range r.db.users {
		if other.ID == id {
			continue
		}
		if patch.Username != nil && other.Username == *patch.Username {
			return nil, duplicate("users", "users_username_key")
		}
		if patch.Email != nil && strings.EqualFold(other.Email, *patch.Email) {
			return nil, duplicate("users", "users_email_key")
		}
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.TelegramChatID != nil {
		v := *patch.TelegramChatID
		u.TelegramChatID = &v
	}
	u.UpdatedAt = r.db.tick()
	r.db.users[id] = u
	return &u, nil
}

func (r memUsers) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return notFound("users")
	}
	u.RefreshToken = &token
	u.RefreshExpiresAt = &expiresAt
	r.db.users[userID] = u
	return nil
}

func (r memUsers) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, u := range r.db.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && u.RefreshExpiresAt.After(time.Now()) {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			r.db.users[id] = u
			return &u, nil
		}
	}
	return nil, notFound("users")
}

// --- tasks

type memTasks struct{ db *memDB }

func (r memTasks) Store(ctx context.Context, task *models.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[task.OwnerID]; !ok {
		return errors.New("tasks_owner_id_fkey")
	}
	task.ID = r.db.id()
	task.CreatedAt = r.db.tick()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	stored.Owner, stored.Comments = nil, nil
	r.db.tasks[task.ID] = stored
	return nil
}

func (r memTasks) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, notFound("tasks")
	}
	return &t, nil
}

func (r memTasks) withOwner(t models.Task) models.Task {
	owner := r.db.users[t.OwnerID]
	summary := owner.Summary()
	t.Owner = &summary
	return t
}

func (r memTasks) FindWithOwner(ctx context.Context, id int64) (*models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, notFound("tasks")
	}
	t = r.withOwner(t)
	return &t, nil
}

func (r memTasks) ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Task{}
	for _, t := range r.db.tasks {
		if t.OwnerID == ownerID {
			out = append(out, r.withOwner(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		}
		return a.Before(*b)
	})
	return out, nil
}

func (r memTasks) Update(ctx context.Context, id int64, changes models.TaskChanges) (*models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, notFound("tasks")
	}
	if changes.Title != nil {
		t.Title = *changes.Title
	}
	if changes.Description != nil {
		t.Description = *changes.Description
	}
	if changes.ClearDueDate {
		t.DueDate = nil
	} else if changes.DueDate != nil {
		d := *changes.DueDate
		t.DueDate = &d
	}
	if changes.Priority != nil {
		t.Priority = *changes.Priority
	}
	if changes.Status != nil {
		t.Status = *changes.Status
	}
	t.UpdatedAt = r.db.tick()
	r.db.tasks[id] = t
	return &t, nil
}

func (r memTasks) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[id]; !ok {
		return notFound("tasks")
	}
	delete(r.db.tasks, id)
	// ON DELETE CASCADE
	for sid, s := range r.db.shares {
		if s.TaskID == id {
			delete(r.db.shares, sid)
		}
	}
	for cid, c := range r.db.comments {
		if c.TaskID == id {
			delete(r.db.comments, cid)
		}
	}
	return nil
}

// --- shares

type memShares struct{ db *memDB }

func (r memShares) Create(ctx context.Context, share *models.SharedTask) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.shares {
		if s.TaskID == share.TaskID && s.UserID == share.UserID {
			return duplicate("shared_tasks", "shared_tasks_task_user_key")
		}
	}
	share.ID = r.db.id()
	share.CreatedAt = r.db.tick()
	r.db.shares[share.ID] = *share
	return nil
}

func (r memShares) find(match func(models.SharedTask) bool) (*models.SharedTask, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.shares {
		if match(s) {
			s := s
			return &s, nil
		}
	}
	return nil, notFound("shared_tasks")
}

func (r memShares) FindByID(ctx context.Context, id int64) (*models.SharedTask, error) {
	return r.find(func(s models.SharedTask) bool { return s.ID == id })
}

func (r memShares) FindByIDForUser(ctx context.Context, id, userID int64) (*models.SharedTask, error) {
	return r.find(func(s models.SharedTask) bool { return s.ID == id && s.UserID == userID })
}

func (r memShares) FindByTaskAndUser(ctx context.Context, taskID, userID int64) (*models.SharedTask, error) {
	return r.find(func(s models.SharedTask) bool { return s.TaskID == taskID && s.UserID == userID })
}

func (r memShares) ListForUser(ctx context.Context, userID int64) ([]models.SharedTask, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.SharedTask{}
	for _, s := range r.db.shares {
		if s.UserID != userID {
			continue
		}
		t := r.db.tasks[s.TaskID]
		t = memTasks{r.db}.withOwner(t)
		s.Task = &t
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memShares) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.shares[id]; !ok {
		return notFound("shared_tasks")
	}
	delete(r.db.shares, id)
	return nil
}

// --- comments

type memComments struct{ db *memDB }

func (r memComments) Create(ctx context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	comment.ID = r.db.id()
	comment.CreatedAt = r.db.tick()
	r.db.comments[comment.ID] = *comment
	return nil
}

func (r memComments) withAuthor(c models.Comment) models.Comment {
	u := r.db.users[c.UserID]
	c.Author = &models.UserSummary{ID: u.ID, Username: u.Username}
	return c
}

func (r memComments) FindWithAuthor(ctx context.Context, id int64) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, notFound("comments")
	}
	c = r.withAuthor(c)
	return &c, nil
}

func (r memComments) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.db.comments {
		if c.TaskID == taskID {
			out = append(out, r.withAuthor(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- notifications

type memNotifications struct{ db *memDB }

func (r memNotifications) Create(ctx context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failNotificationCreate != nil {
		return r.db.failNotificationCreate
	}
	n.ID = r.db.id()
	n.IsRead = false
	n.CreatedAt = r.db.tick()
	r.db.notifications[n.ID] = *n
	return nil
}

func (r memNotifications) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memNotifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, item := range r.db.notifications {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			r.db.notifications[id] = item
			n++
		}
	}
	return n, nil
}

// --- password resets

type memResets struct{ db *memDB }

func (r memResets) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.PasswordReset, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	pr := models.PasswordReset{ID: r.db.id(), UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: r.db.tick()}
	r.db.resets[pr.ID] = pr
	return &pr, nil
}

func (r memResets) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, pr := range r.db.resets {
		if pr.Token == token {
			pr := pr
			return &pr, nil
		}
	}
	return nil, notFound("password_resets")
}

func (r memResets) MarkUsed(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	pr, ok := r.db.resets[id]
	if !ok || pr.UsedAt != nil {
		return notFound("password_resets")
	}
	now := r.db.tick()
	pr.UsedAt = &now
	r.db.resets[id] = pr
	return nil
}

// --- collaborators

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, items ...models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, items...)
}

type fakeEmails struct {
	welcome []string
	resets  map[string]string
	err     error
}

func (f *fakeEmails) SendWelcomeEmail(email, username string) error {
	f.welcome = append(f.welcome, email)
	return f.err
}

func (f *fakeEmails) SendPasswordResetEmail(email, token string) error {
	if f.resets == nil {
		f.resets = map[string]string{}
	}
	f.resets[email] = token
	return f.err
}

// plainAuth stores passwords with a visible prefix so tests can assert the
// credential transform ran without paying for bcrypt.
type plainAuth struct{ AuthService }

func (plainAuth) HashPassword(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainAuth) CheckPassword(hash, plain string) bool    { return hash == "hashed:"+plain }
