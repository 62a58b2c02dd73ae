// Package inmem — хранилища в памяти с той же семантикой, что и Postgres-репозитории.
// Используется в тестах сервисов и обработчиков.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wikihub/internal/models"
	"wikihub/internal/repository"
)

// clock выдаёт строго возрастающее время, чтобы сортировки были детерминированы.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// Store держит все таблицы; отдельные репозитории смотрят в него.
type Store struct {
	mu         sync.Mutex
	clock      *clock
	users      map[string]*models.User
	workspaces map[string]*models.Workspace
	articles   map[string]*models.Article
	versions   map[string][]*models.ArticleVersion
	comments   map[string]*models.Comment

	// BeforeAppend вызывается до записи версии, без блокировки. Нужен тестам гонок.
	BeforeAppend func(v *models.ArticleVersion)
}

func NewStore() *Store {
	s := &Store{
		clock:      newClock(),
		users:      map[string]*models.User{},
		workspaces: map[string]*models.Workspace{},
		articles:   map[string]*models.Article{},
		versions:   map[string][]*models.ArticleVersion{},
		comments:   map[string]*models.Comment{},
	}
	for _, w := range [][2]string{
		{"uncategorized", "Uncategorized"},
		{"nature", "Nature & Science"},
		{"culture", "Culture & Arts"},
		{"tech", "Technology"},
		{"education", "Education"},
	} {
		now := s.clock.now()
		s.workspaces[w[0]] = &models.Workspace{ID: w[0], Name: w[1], CreatedAt: now, UpdatedAt: now}
	}
	return s
}

func (s *Store) Articles() repository.ArticleRepo     { return &articleRepo{s} }
func (s *Store) Comments() repository.CommentRepo     { return &commentRepo{s} }
func (s *Store) Workspaces() repository.WorkspaceRepo { return &workspaceRepo{s} }
func (s *Store) Users() *UserRepo                     { return &UserRepo{s} }

func copyAttachments(in []models.Attachment) []models.Attachment {
	out := make([]models.Attachment, len(in))
	copy(out, in)
	return out
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *Store) articleOut(a *models.Article) *models.Article {
	c := *a
	c.WorkspaceID = copyStr(a.WorkspaceID)
	c.UserID = copyStr(a.UserID)
	c.LatestVersionID = copyStr(a.LatestVersionID)
	c.Attachments = copyAttachments(a.Attachments)
	if c.WorkspaceID != nil {
		if w, ok := s.workspaces[*c.WorkspaceID]; ok {
			c.WorkspaceName = w.Name
		}
	}
	if c.UserID != nil {
		if u, ok := s.users[*c.UserID]; ok {
			c.AuthorName = u.Name
		}
	}
	return &c
}

func versionOut(v *models.ArticleVersion) *models.ArticleVersion {
	c := *v
	c.WorkspaceID = copyStr(v.WorkspaceID)
	c.ChangeReason = copyStr(v.ChangeReason)
	c.Attachments = copyAttachments(v.Attachments)
	return &c
}

// ---- articles ----

type articleRepo struct{ s *Store }

func (r *articleRepo) CreateWithFirstVersion(_ context.Context, a *models.Article, v *models.ArticleVersion) (*models.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[a.ID]; ok {
		return nil, repository.ErrDuplicate
	}
	if a.WorkspaceID != nil {
		if _, ok := s.workspaces[*a.WorkspaceID]; !ok {
			return nil, repository.ErrNotFound
		}
	}
	now := s.clock.now()
	stored := *a
	stored.Attachments = copyAttachments(a.Attachments)
	stored.WorkspaceID = copyStr(a.WorkspaceID)
	stored.UserID = copyStr(a.UserID)
	stored.CurrentVersion = v.Version
	stored.LatestVersionID = copyStr(&v.ID)
	stored.CreatedAt, stored.UpdatedAt = now, now

	sv := versionOut(v)
	sv.CreatedAt = now

	s.articles[a.ID] = &stored
	s.versions[a.ID] = []*models.ArticleVersion{sv}
	return s.articleOut(&stored), nil
}

func (r *articleRepo) AppendVersion(_ context.Context, v *models.ArticleVersion) (*models.Article, error) {
	s := r.s
	if s.BeforeAppend != nil {
		s.BeforeAppend(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[v.ArticleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, existing := range s.versions[v.ArticleID] {
		if existing.Version == v.Version {
			return nil, repository.ErrVersionConflict
		}
	}
	if a.CurrentVersion != v.Version-1 {
		return nil, repository.ErrVersionConflict
	}

	now := s.clock.now()
	sv := versionOut(v)
	sv.CreatedAt = now
	s.versions[v.ArticleID] = append(s.versions[v.ArticleID], sv)

	a.Title = v.Title
	a.Content = v.Content
	a.WorkspaceID = copyStr(v.WorkspaceID)
	a.Attachments = copyAttachments(v.Attachments)
	a.CurrentVersion = v.Version
	id := v.ID
	a.LatestVersionID = &id
	a.UpdatedAt = now
	return s.articleOut(a), nil
}

func (r *articleRepo) GetByID(_ context.Context, id string) (*models.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.articleOut(a), nil
}

func (r *articleRepo) List(_ context.Context, f models.ArticleFilter) ([]*models.ArticleSummary, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids map[string]struct{}
	if f.IDs != nil {
		ids = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = struct{}{}
		}
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))

	list := []*models.ArticleSummary{}
	for _, a := range s.articles {
		if f.WorkspaceID != "" && (a.WorkspaceID == nil || *a.WorkspaceID != f.WorkspaceID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Content), q) {
			continue
		}
		if ids != nil {
			if _, ok := ids[a.ID]; !ok {
				continue
			}
		}
		o := s.articleOut(a)
		list = append(list, &models.ArticleSummary{
			ID:             o.ID,
			Title:          o.Title,
			WorkspaceID:    o.WorkspaceID,
			WorkspaceName:  o.WorkspaceName,
			Attachments:    o.Attachments,
			CurrentVersion: o.CurrentVersion,
			UserID:         o.UserID,
			AuthorName:     o.AuthorName,
			CreatedAt:      o.CreatedAt,
			UpdatedAt:      o.UpdatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *articleRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.articles, id)
	delete(s.versions, id)
	for cid, c := range s.comments {
		if c.ArticleID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (r *articleRepo) Exists(_ context.Context, id string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.articles[id]
	return ok, nil
}

func (r *articleRepo) AppendAttachments(_ context.Context, id string, atts []models.Attachment) (*models.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.Attachments = append(a.Attachments, atts...)
	a.UpdatedAt = s.clock.now()
	return s.articleOut(a), nil
}

func (r *articleRepo) RemoveAttachment(_ context.Context, id, attachmentID string) (*models.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kept := make([]models.Attachment, 0, len(a.Attachments))
	for _, att := range a.Attachments {
		if att.ID != attachmentID {
			kept = append(kept, att)
		}
	}
	if len(kept) == len(a.Attachments) {
		return nil, repository.ErrNotFound
	}
	a.Attachments = kept
	a.UpdatedAt = s.clock.now()
	return s.articleOut(a), nil
}

func (r *articleRepo) AttachmentFilenames(_ context.Context, id string) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	var out []string
	add := func(atts []models.Attachment) {
		for _, att := range atts {
			if _, ok := seen[att.Filename]; !ok && att.Filename != "" {
				seen[att.Filename] = struct{}{}
				out = append(out, att.Filename)
			}
		}
	}
	if a, ok := s.articles[id]; ok {
		add(a.Attachments)
	}
	for _, v := range s.versions[id] {
		add(v.Attachments)
	}
	return out, nil
}

func (r *articleRepo) ReferencedFilenames(_ context.Context) (map[string]struct{}, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]struct{}{}
	for _, a := range s.articles {
		for _, att := range a.Attachments {
			out[att.Filename] = struct{}{}
		}
	}
	for _, vs := range s.versions {
		for _, v := range vs {
			for _, att := range v.Attachments {
				out[att.Filename] = struct{}{}
			}
		}
	}
	return out, nil
}

func (r *articleRepo) ListVersions(_ context.Context, articleID string) ([]*models.VersionSummary, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []*models.VersionSummary{}
	for _, v := range s.versions[articleID] {
		list = append(list, &models.VersionSummary{
			ID:           v.ID,
			Version:      v.Version,
			Title:        v.Title,
			CreatedBy:    v.CreatedBy,
			ChangeReason: copyStr(v.ChangeReason),
			CreatedAt:    v.CreatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Version > list[j].Version })
	return list, nil
}

func (r *articleRepo) GetVersion(_ context.Context, articleID string, version int) (*models.ArticleVersion, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.versions[articleID] {
		if v.Version == version {
			return versionOut(v), nil
		}
	}
	return nil, repository.ErrNotFound
}

// ---- comments ----

type commentRepo struct{ s *Store }

func commentOut(c *models.Comment) *models.Comment {
	o := *c
	o.UserID = copyStr(c.UserID)
	return &o
}

func (r *commentRepo) ListByArticle(_ context.Context, articleID string) ([]*models.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []*models.Comment{}
	for _, c := range s.comments {
		if c.ArticleID == articleID {
			list = append(list, commentOut(c))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return commentOut(c), nil
}

func (r *commentRepo) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[c.ArticleID]; !ok {
		return nil, repository.ErrNotFound
	}
	stored := commentOut(c)
	stored.CreatedAt = s.clock.now()
	stored.UpdatedAt = stored.CreatedAt
	s.comments[c.ID] = stored
	return commentOut(stored), nil
}

func (r *commentRepo) UpdateContent(_ context.Context, id, content string) (*models.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = s.clock.now()
	return commentOut(c), nil
}

func (r *commentRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// ---- workspaces ----

type workspaceRepo struct{ s *Store }

func (r *workspaceRepo) List(_ context.Context) ([]*models.Workspace, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []*models.Workspace{}
	for _, w := range s.workspaces {
		c := *w
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *workspaceRepo) GetByID(_ context.Context, id string) (*models.Workspace, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *w
	return &c, nil
}

func (r *workspaceRepo) Rename(_ context.Context, id, name string) (*models.Workspace, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w.Name = name
	w.UpdatedAt = s.clock.now()
	c := *w
	return &c, nil
}

// ---- users ----

type UserRepo struct{ s *Store }

func userOut(u *models.User, withPassword bool) *models.User {
	c := *u
	if !withPassword {
		c.PasswordHash = ""
	}
	return &c
}

func (r *UserRepo) CreateUser(_ context.Context, u *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := s.clock.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = userOut(u, true)
	return nil
}

func (r *UserRepo) IsEmailTaken(_ context.Context, email string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return userOut(u, true), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return userOut(u, false), nil
}

func (r *UserRepo) GetAllUsers(_ context.Context) ([]*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []*models.User{}
	for _, u := range s.users {
		list = append(list, userOut(u, false))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id, role string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = s.clock.now()
	return userOut(u, false), nil
}

func (r *UserRepo) CountByRole(_ context.Context) (map[string]int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for _, u := range s.users {
		out[u.Role]++
	}
	return out, nil
}
