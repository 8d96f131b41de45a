package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// In-memory fakes for the read-side tests.

type fakeUsers struct {
	byID map[string]*user.User
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]*user.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, u *user.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Username.String() == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUsers) Update(ctx context.Context, u *user.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) ListTopByPoints(ctx context.Context, limit int) ([]*user.User, error) {
	all := make([]*user.User, 0, len(f.byID))
	for _, u := range f.byID {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Points != all[j].Points {
			return all[i].Points > all[j].Points
		}
		return all[i].Username < all[j].Username
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fakeCatalog struct {
	byID map[string]*skill.Skill
}

func newFakeCatalog(skills ...*skill.Skill) *fakeCatalog {
	f := &fakeCatalog{byID: make(map[string]*skill.Skill)}
	for _, s := range skills {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeCatalog) Create(ctx context.Context, s *skill.Skill) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeCatalog) FindByID(ctx context.Context, id string) (*skill.Skill, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, skill.ErrSkillNotFound
	}
	return s, nil
}

func (f *fakeCatalog) FindByTitle(ctx context.Context, title string) (*skill.Skill, error) {
	key := skill.TitleKey(title)
	for _, s := range f.byID {
		if skill.TitleKey(s.Title) == key {
			return s, nil
		}
	}
	return nil, skill.ErrSkillNotFound
}

func (f *fakeCatalog) List(ctx context.Context) ([]*skill.Skill, error) {
	all := make([]*skill.Skill, 0, len(f.byID))
	for _, s := range f.byID {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return all, nil
}

type fakeDeclarations struct {
	items []*skill.UserSkill
}

func (f *fakeDeclarations) Create(ctx context.Context, us *skill.UserSkill) error {
	f.items = append(f.items, us)
	return nil
}

func (f *fakeDeclarations) ListByUser(ctx context.Context, userID string) ([]*skill.UserSkill, error) {
	var out []*skill.UserSkill
	for _, us := range f.items {
		if us.UserID == userID {
			out = append(out, us)
		}
	}
	return out, nil
}

func (f *fakeDeclarations) ListByUserAndType(ctx context.Context, userID string, t skill.Type) ([]*skill.UserSkill, error) {
	var out []*skill.UserSkill
	for _, us := range f.items {
		if us.UserID == userID && us.Type == t {
			out = append(out, us)
		}
	}
	return out, nil
}

func (f *fakeDeclarations) ListBySkillAndType(ctx context.Context, skillID string, t skill.Type) ([]*skill.UserSkill, error) {
	var out []*skill.UserSkill
	for _, us := range f.items {
		if us.SkillID == skillID && us.Type == t {
			out = append(out, us)
		}
	}
	return out, nil
}

func (f *fakeDeclarations) Exists(ctx context.Context, userID, skillID string, t skill.Type) (bool, error) {
	for _, us := range f.items {
		if us.UserID == userID && us.SkillID == skillID && us.Type == t {
			return true, nil
		}
	}
	return false, nil
}

// declare appends a declaration preserving insertion order.
func (f *fakeDeclarations) declare(userID, skillID string, t skill.Type, proficiency string) {
	f.items = append(f.items, &skill.UserSkill{
		ID:          userID + ":" + skillID + ":" + string(t),
		UserID:      userID,
		SkillID:     skillID,
		Type:        t,
		Proficiency: proficiency,
	})
}

type fakeChains struct {
	byID map[string]*chain.SkillChain
}

func newFakeChains(chains ...*chain.SkillChain) *fakeChains {
	f := &fakeChains{byID: make(map[string]*chain.SkillChain)}
	for _, c := range chains {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeChains) Create(ctx context.Context, c *chain.SkillChain) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeChains) FindByID(ctx context.Context, id string) (*chain.SkillChain, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, chain.ErrChainNotFound
	}
	return c, nil
}

func (f *fakeChains) FindByTitle(ctx context.Context, title string) (*chain.SkillChain, error) {
	for _, c := range f.byID {
		if c.Title == title {
			return c, nil
		}
	}
	return nil, chain.ErrChainNotFound
}

func (f *fakeChains) List(ctx context.Context) ([]*chain.SkillChain, error) {
	all := make([]*chain.SkillChain, 0, len(f.byID))
	for _, c := range f.byID {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return all, nil
}

type fakeNotifications struct {
	items []*notification.Notification
}

func (f *fakeNotifications) Create(ctx context.Context, n *notification.Notification) error {
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotifications) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, userID, notificationID string) error {
	for _, n := range f.items {
		if n.ID == notificationID && n.UserID == userID {
			n.MarkRead()
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (f *fakeNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeBadges struct {
	items []*notification.Badge
}

func (f *fakeBadges) Create(ctx context.Context, b *notification.Badge) error {
	f.items = append(f.items, b)
	return nil
}

func (f *fakeBadges) ListByUser(ctx context.Context, userID string) ([]*notification.Badge, error) {
	var out []*notification.Badge
	for _, b := range f.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadges) CountByUser(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, b := range f.items {
		if b.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fakeLeaderboardCache records snapshot writes and serves a fixed hit.
type fakeLeaderboardCache struct {
	snapshot []LeaderboardEntryDTO
	stored   [][]LeaderboardEntryDTO
}

func (f *fakeLeaderboardCache) GetTop(ctx context.Context) ([]LeaderboardEntryDTO, error) {
	if f.snapshot == nil {
		return nil, errors.New("cache miss")
	}
	return f.snapshot, nil
}

func (f *fakeLeaderboardCache) SetTop(ctx context.Context, entries []LeaderboardEntryDTO) error {
	f.stored = append(f.stored, entries)
	return nil
}

// Entity helpers.

func testUser(id, username string, points int) *user.User {
	now := time.Now().UTC()
	return &user.User{
		ID:        id,
		Username:  user.Username(username),
		Email:     username + "@example.com",
		Points:    user.Points(points),
		Role:      user.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testSkill(id, title string) *skill.Skill {
	return &skill.Skill{ID: id, Title: title, CreatedAt: time.Now().UTC()}
}

func testChain(id, title string, skillIDs ...string) *chain.SkillChain {
	c := &chain.SkillChain{ID: id, Title: title}
	for i, skillID := range skillIDs {
		c.Nodes = append(c.Nodes, &chain.Node{
			ID:       id + "-n" + skillID,
			ChainID:  id,
			SkillID:  skillID,
			Sequence: i + 1,
		})
	}
	return c
}
