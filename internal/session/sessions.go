package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entities"
)

// Session data keys
const (
	SessionKeyFlash = "flash"
)

func init() {
	// Register types that will be stored in sessions
	gob.Register([]entities.Message{})
}

// Manager wraps scs.SessionManager with flash message helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, cfg config.Session) (*Manager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	if cfg.Lifetime > 0 {
		sm.Lifetime = cfg.Lifetime
	}

	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// PushFlash queues messages to be shown on the next rendered page.
func (m *Manager) PushFlash(ctx context.Context, messages ...entities.Message) {
	if len(messages) == 0 {
		return
	}
	pending, _ := m.Get(ctx, SessionKeyFlash).([]entities.Message)
	m.Put(ctx, SessionKeyFlash, append(pending, messages...))
}

// PopFlash returns and clears the queued messages.
func (m *Manager) PopFlash(ctx context.Context) []entities.Message {
	messages, _ := m.Pop(ctx, SessionKeyFlash).([]entities.Message)
	return messages
}
