package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// mirrorTTL bounds the lifetime of the mirrored credential.
const mirrorTTL = 7 * 24 * time.Hour

// Mirror keeps a synchronously readable copy of the credential in a
// small file beside the session database. The route gate and the
// transport read it; only the session store writes it. Unlike the
// store it needs no hydration, so it can answer before the first
// render.
type Mirror struct {
	path string
	now  func() time.Time
}

type mirrorRecord struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// NewMirror creates a mirror backed by <stateDir>/token.
func NewMirror(stateDir string) *Mirror {
	return &Mirror{
		path: filepath.Join(stateDir, "token"),
		now:  time.Now,
	}
}

// Set writes the credential with a one-week expiry. An empty value
// behaves as Clear.
func (m *Mirror) Set(token string) error {
	if token == "" {
		return m.Clear()
	}
	return m.write(mirrorRecord{
		Token:     token,
		ExpiresAt: m.now().Add(mirrorTTL).Unix(),
	})
}

// Clear removes the credential by writing an already-expired record.
func (m *Mirror) Clear() error {
	return m.write(mirrorRecord{Token: "", ExpiresAt: 0})
}

func (m *Mirror) write(rec mirrorRecord) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o600)
}

// Read returns the current credential, or "" when absent, expired or
// unreadable. A corrupt marker counts as absent.
func (m *Mirror) Read() string {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return ""
	}
	var rec mirrorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ""
	}
	if rec.Token == "" || rec.ExpiresAt <= m.now().Unix() {
		return ""
	}
	return rec.Token
}
