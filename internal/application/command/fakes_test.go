package command

import (
	"context"
	"sort"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/session"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// In-memory repository fakes shared by the handler tests.

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
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return user.ErrUserAlreadyExists
		}
	}
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
	if _, ok := f.byID[u.ID]; !ok {
		return user.ErrUserNotFound
	}
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

func (f *fakeUsers) ApplyDelta(ctx context.Context, userID string, delta int) (int, error) {
	u, ok := f.byID[userID]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	if err := u.ApplyPointsDelta(delta); err != nil {
		return 0, err
	}
	return int(u.Points), nil
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
	for _, existing := range f.byID {
		if skill.TitleKey(existing.Title) == skill.TitleKey(s.Title) {
			return skill.ErrDuplicateTitle
		}
	}
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
	for _, existing := range f.items {
		if existing.UserID == us.UserID && existing.SkillID == us.SkillID && existing.Type == us.Type {
			return skill.ErrDuplicateDeclaration
		}
	}
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

// fakeStakes mirrors the transactional escrow of the real repository:
// Create debits the balance, Settle credits it, both guard settle races.
type fakeStakes struct {
	byID  map[string]*chain.Stake
	users *fakeUsers
}

func newFakeStakes(users *fakeUsers) *fakeStakes {
	return &fakeStakes{byID: make(map[string]*chain.Stake), users: users}
}

func (f *fakeStakes) Create(ctx context.Context, s *chain.Stake) error {
	for _, existing := range f.byID {
		if existing.UserID == s.UserID && existing.ChainID == s.ChainID && existing.Status == chain.StakeInProgress {
			return chain.ErrActiveStakeExists
		}
	}
	if _, err := f.users.ApplyDelta(ctx, s.UserID, -s.Amount); err != nil {
		return err
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStakes) FindByID(ctx context.Context, id string) (*chain.Stake, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, chain.ErrStakeNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStakes) FindActiveByUserAndChain(ctx context.Context, userID, chainID string) (*chain.Stake, error) {
	for _, s := range f.byID {
		if s.UserID == userID && s.ChainID == chainID && s.Status == chain.StakeInProgress {
			return s, nil
		}
	}
	return nil, chain.ErrStakeNotFound
}

func (f *fakeStakes) ListByUser(ctx context.Context, userID string) ([]*chain.Stake, error) {
	var out []*chain.Stake
	for _, s := range f.byID {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStakes) Update(ctx context.Context, s *chain.Stake) error {
	if _, ok := f.byID[s.ID]; !ok {
		return chain.ErrStakeNotFound
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStakes) Settle(ctx context.Context, s *chain.Stake, creditDelta int) error {
	stored, ok := f.byID[s.ID]
	if !ok {
		return chain.ErrStakeNotFound
	}
	if stored.Status != chain.StakeInProgress {
		return chain.ErrStakeSettled
	}
	clone := *s
	f.byID[s.ID] = &clone
	if creditDelta != 0 {
		if _, err := f.users.ApplyDelta(ctx, s.UserID, creditDelta); err != nil {
			return err
		}
	}
	return nil
}

type fakeSessions struct {
	byID map[string]*session.Session
}

func newFakeSessions(sessions ...*session.Session) *fakeSessions {
	f := &fakeSessions{byID: make(map[string]*session.Session)}
	for _, s := range sessions {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSessions) Create(ctx context.Context, s *session.Session) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id string) (*session.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) ListByParticipant(ctx context.Context, userID string) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range f.byID {
		if s.TeacherID == userID || s.LearnerID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) Update(ctx context.Context, s *session.Session) error {
	if _, ok := f.byID[s.ID]; !ok {
		return session.ErrSessionNotFound
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessions) CountCompletedByTeacher(ctx context.Context, teacherID string) (int, error) {
	count := 0
	for _, s := range f.byID {
		if s.TeacherID == teacherID && s.Status == session.StatusCompleted {
			count++
		}
	}
	return count, nil
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

type fakeSink struct {
	delivered []*notification.Notification
}

func (f *fakeSink) Deliver(ctx context.Context, n *notification.Notification) error {
	f.delivered = append(f.delivered, n)
	return nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(t shared.EventType) []shared.Event {
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

// Entity helpers.

func testUser(id, username string, points int) *user.User {
	now := time.Now().UTC()
	return &user.User{
		ID:           id,
		Username:     user.Username(username),
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Points:       user.Points(points),
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
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

func intPtr(v int) *int { return &v }
