// Package postgres implements the PostgreSQL persistence layer for the SkillChain backend.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: USERS & SKILL CATALOG
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users and skill catalog
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username VARCHAR(50) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    full_name VARCHAR(100) NOT NULL DEFAULT '',
    bio TEXT NOT NULL DEFAULT '',
    location VARCHAR(100) NOT NULL DEFAULT '',
    points INTEGER NOT NULL DEFAULT 500,
    streak_count INTEGER NOT NULL DEFAULT 0,
    last_activity_date TIMESTAMP WITH TIME ZONE,
    role VARCHAR(20) NOT NULL DEFAULT 'USER',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- Constraints for data integrity
    CONSTRAINT valid_points CHECK (points >= 0),
    CONSTRAINT valid_streak CHECK (streak_count >= 0),
    CONSTRAINT valid_role CHECK (role IN ('USER', 'ADMIN'))
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC);

CREATE TABLE IF NOT EXISTS skills (
    id UUID PRIMARY KEY,
    title VARCHAR(100) NOT NULL,
    category VARCHAR(50) NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Skill titles are unique case-insensitively
CREATE UNIQUE INDEX IF NOT EXISTS idx_skills_title_lower ON skills(LOWER(title));

CREATE TABLE IF NOT EXISTS user_skills (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    skill_id UUID NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
    skill_type VARCHAR(10) NOT NULL,
    proficiency VARCHAR(50) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_skill_type CHECK (skill_type IN ('TEACH', 'LEARN')),
    UNIQUE(user_id, skill_id, skill_type)
);

CREATE INDEX IF NOT EXISTS idx_user_skills_user ON user_skills(user_id);
CREATE INDEX IF NOT EXISTS idx_user_skills_skill_type ON user_skills(skill_id, skill_type);
`

const migration001Down = `
DROP TABLE IF EXISTS user_skills;
DROP TABLE IF EXISTS skills;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: SKILL CHAINS & STAKES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create skill chains and stakes
-- Version: 002

CREATE TABLE IF NOT EXISTS skill_chains (
    id UUID PRIMARY KEY,
    title VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    category VARCHAR(50) NOT NULL DEFAULT '',
    icon VARCHAR(10) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS skill_chain_nodes (
    id UUID PRIMARY KEY,
    chain_id UUID NOT NULL REFERENCES skill_chains(id) ON DELETE CASCADE,
    skill_id UUID NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
    sequence_order INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',

    UNIQUE(chain_id, skill_id)
);

CREATE INDEX IF NOT EXISTS idx_chain_nodes_chain ON skill_chain_nodes(chain_id, sequence_order, id);

CREATE TABLE IF NOT EXISTS chain_stakes (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    chain_id UUID NOT NULL REFERENCES skill_chains(id) ON DELETE CASCADE,
    amount INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'IN_PROGRESS',
    deadline TIMESTAMP WITH TIME ZONE NOT NULL,
    reward INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    settled_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_amount CHECK (amount > 0),
    CONSTRAINT valid_stake_status CHECK (status IN ('IN_PROGRESS', 'COMPLETED', 'FAILED'))
);

-- One active stake per user per chain
CREATE UNIQUE INDEX IF NOT EXISTS idx_stakes_active
    ON chain_stakes(user_id, chain_id) WHERE status = 'IN_PROGRESS';

CREATE INDEX IF NOT EXISTS idx_stakes_user ON chain_stakes(user_id, created_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS chain_stakes;
DROP TABLE IF EXISTS skill_chain_nodes;
DROP TABLE IF EXISTS skill_chains;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: SESSIONS, NOTIFICATIONS & BADGES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create sessions, notifications and badges
-- Version: 003

CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY,
    skill_id UUID NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
    teacher_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    learner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    scheduled_at TIMESTAMP WITH TIME ZONE,
    description TEXT NOT NULL DEFAULT '',
    meeting_link TEXT NOT NULL DEFAULT '',
    location VARCHAR(200) NOT NULL DEFAULT '',
    rating INTEGER,
    feedback TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_session_status CHECK (status IN ('PENDING', 'ACCEPTED', 'CANCELLED', 'COMPLETED')),
    CONSTRAINT valid_rating CHECK (rating IS NULL OR (rating >= 1 AND rating <= 5)),
    CONSTRAINT different_parties CHECK (teacher_id <> learner_id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_teacher ON sessions(teacher_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_learner ON sessions(learner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_teacher_status ON sessions(teacher_id, status);

CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    notification_type VARCHAR(30) NOT NULL,
    message TEXT NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    related_id VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_notification_type CHECK (notification_type IN
        ('SESSION_REQUEST', 'SESSION_ACCEPTED', 'SESSION_CANCELLED', 'SESSION_COMPLETED', 'BADGE_AWARDED', 'STAKE_SETTLED'))
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(user_id) WHERE read = FALSE;

CREATE TABLE IF NOT EXISTS badges (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    badge_type VARCHAR(20) NOT NULL,
    icon VARCHAR(10) NOT NULL DEFAULT '',
    awarded_by_id UUID REFERENCES users(id) ON DELETE SET NULL,
    awarded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_badge_type CHECK (badge_type IN ('LEARNER', 'TEACHER'))
);

CREATE INDEX IF NOT EXISTS idx_badges_user ON badges(user_id, awarded_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS badges;
DROP TABLE IF EXISTS notifications;
DROP TABLE IF EXISTS sessions;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_and_skills",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_chains_and_stakes",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_sessions_notifications_badges",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
