package audit

import (
	"database/sql"
	"time"
)

type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Log(actor string, action string, metadata string) error {
	_, err := s.db.Exec(`
	INSERT INTO audit_logs(actor, action, metadata, created_at)
	VALUES (?, ?, ?, ?)
	`, actor, action, metadata, time.Now().Unix())
	return err
}

func (s *Service) Count(action string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM audit_logs WHERE action=?`, action).Scan(&n)
	return n, err
}
