package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/skill"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
	"github.com/skillchain-hub/skillchain-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP SEEDER
// Сидер запускается явно при старте приложения и идемпотентен:
// существующие записи не трогаются, создаются только отсутствующие.
// ══════════════════════════════════════════════════════════════════════════════

// Seeder создаёт стартовые данные: администратора и базовые цепочки навыков.
type Seeder struct {
	users  user.Directory
	skills skill.Catalog
	chains chain.Chains
	log    *logger.Logger
}

// NewSeeder создаёт новый Seeder.
func NewSeeder(users user.Directory, skills skill.Catalog, chains chain.Chains, log *logger.Logger) *Seeder {
	return &Seeder{
		users:  users,
		skills: skills,
		chains: chains,
		log:    log.With(logger.Component("seeder")),
	}
}

// AdminCredentials описывает учётную запись администратора.
type AdminCredentials struct {
	Username string
	Email    string
	Password string
}

// Seed создаёт администратора и пять базовых цепочек навыков.
func (s *Seeder) Seed(ctx context.Context, admin AdminCredentials) error {
	if err := s.seedAdmin(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if err := s.seedChains(ctx); err != nil {
		return fmt.Errorf("seed chains: %w", err)
	}

	s.log.Info("seed data verified")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin AdminCredentials) error {
	_, err := s.users.FindByUsername(ctx, admin.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	u, err := user.NewUser(user.NewUserParams{
		ID:           uuid.NewString(),
		Username:     user.Username(admin.Username),
		Email:        admin.Email,
		PasswordHash: string(hash),
		FullName:     "System Administrator",
	})
	if err != nil {
		return err
	}
	u.Role = user.RoleAdmin

	if err := s.users.Create(ctx, u); err != nil {
		// Lost a race against a concurrent seeder: the admin exists now.
		if errors.Is(err, user.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	s.log.Info("default admin created", logger.String("username", admin.Username))
	return nil
}

// chainSeed описывает одну стартовую цепочку.
type chainSeed struct {
	title       string
	description string
	category    string
	icon        string
	steps       []chainStep
}

type chainStep struct {
	skillTitle    string
	skillCategory string
	stepDesc      string
}

func defaultChains() []chainSeed {
	return []chainSeed{
		{
			title:       "Full-Stack Web Architect",
			description: "Master the art of building modern web applications from scratch.",
			category:    "Development",
			icon:        "🌐",
			steps: []chainStep{
				{"HTML", "Web Dev", "The skeleton of the web."},
				{"CSS", "Web Dev", "Styling and responsiveness."},
				{"JavaScript", "Web Dev", "Interactivity and logic."},
				{"React", "Web Dev", "Modern frontend framework."},
			},
		},
		{
			title:       "Enterprise Backend Master",
			description: "Deep dive into server-side logic and robust architectures.",
			category:    "Development",
			icon:        "⚙️",
			steps: []chainStep{
				{"Java", "Programming", "The core language."},
				{"Spring Boot", "Backend", "Building REST APIs."},
			},
		},
		{
			title:       "Data Science Roadmap",
			description: "Transform raw data into actionable insights using Python and statistics.",
			category:    "Data",
			icon:        "📊",
			steps: []chainStep{
				{"Python", "Programming", "The foundation of data science."},
				{"Statistics", "Math", "Understanding data distributions."},
				{"Machine Learning", "Data Science", "Building predictive models."},
			},
		},
		{
			title:       "Growth Marketing Strategy",
			description: "Learn to scale products using SEO, Social Media, and Analytics.",
			category:    "Marketing",
			icon:        "📈",
			steps: []chainStep{
				{"SEO", "Marketing", "Organic search optimization."},
				{"Google Ads", "Marketing", "Paid acquisition strategies."},
				{"Content Strategy", "Marketing", "Building a brand voice."},
			},
		},
		{
			title:       "UI/UX Design Masterclass",
			description: "Design intuitive and beautiful user experiences from wireframes to high-fidelity.",
			category:    "Design",
			icon:        "🎨",
			steps: []chainStep{
				{"Figma", "Design Tools", "Mastering the industry standard tool."},
				{"Information Architecture", "UX Design", "Structuring user flows."},
				{"Interactive Prototyping", "UI Design", "Bringing designs to life."},
			},
		},
	}
}

func (s *Seeder) seedChains(ctx context.Context) error {
	for _, seed := range defaultChains() {
		_, err := s.chains.FindByTitle(ctx, seed.title)
		if err == nil {
			continue
		}
		if !errors.Is(err, chain.ErrChainNotFound) {
			return err
		}

		c := &chain.SkillChain{
			ID:          uuid.NewString(),
			Title:       seed.title,
			Description: seed.description,
			Category:    seed.category,
			Icon:        seed.icon,
		}

		for i, step := range seed.steps {
			sk, err := s.findOrCreateSkill(ctx, step.skillTitle, step.skillCategory)
			if err != nil {
				return err
			}

			c.Nodes = append(c.Nodes, &chain.Node{
				ID:          uuid.NewString(),
				ChainID:     c.ID,
				SkillID:     sk.ID,
				Sequence:    i + 1,
				Description: step.stepDesc,
			})
		}

		if err := s.chains.Create(ctx, c); err != nil {
			return err
		}

		s.log.Info("seeded skill chain",
			logger.ChainID(c.ID),
			logger.String("title", c.Title),
		)
	}

	return nil
}

func (s *Seeder) findOrCreateSkill(ctx context.Context, title, category string) (*skill.Skill, error) {
	existing, err := s.skills.FindByTitle(ctx, title)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, skill.ErrSkillNotFound) {
		return nil, err
	}

	created, err := skill.NewSkill(uuid.NewString(), title, category, "")
	if err != nil {
		return nil, err
	}

	if err := s.skills.Create(ctx, created); err != nil {
		if errors.Is(err, skill.ErrDuplicateTitle) {
			return s.skills.FindByTitle(ctx, title)
		}
		return nil, err
	}

	return created, nil
}
