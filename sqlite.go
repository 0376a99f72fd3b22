package main

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the chat history and classification records in a
// local SQLite file. It mirrors the production Postgres schema so the
// two backends are interchangeable behind Store.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id  TEXT NOT NULL,
		message      TEXT NOT NULL,
		message_type TEXT NOT NULL,
		message_date DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_customer ON chat_history(customer_id, message_date);

	CREATE TABLE IF NOT EXISTS customers (
		id    TEXT PRIMARY KEY,
		wa_id TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS classificacoes (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id                 TEXT NOT NULL,
		classificacao           TEXT NOT NULL,
		confianca               REAL NOT NULL,
		contexto                TEXT DEFAULT '',
		classificacao_especifica TEXT DEFAULT '',
		sugestao_melhoria       TEXT DEFAULT '',
		tokens_utilizados       INTEGER DEFAULT 0,
		tempo_processamento_ms  INTEGER DEFAULT 0,
		status                  TEXT DEFAULT 'concluido',
		wa_id                   TEXT DEFAULT '',
		data_classificacao      DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_classificacoes_user ON classificacoes(user_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for seeding in tests and tooling.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) ExistsResult(ctx context.Context, customerID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM classificacoes WHERE user_id = ?", customerID,
	).Scan(&count)
	return count > 0, err
}

func (s *SQLiteStore) FetchWindow(ctx context.Context, customerID string, limit int) (ConversationWindow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message, message_date, message_type
		 FROM chat_history
		 WHERE customer_id = ? AND message_type IN (?, ?)
		 ORDER BY message_date DESC
		 LIMIT ?`,
		customerID, RoleCustomer, RoleAgent, limit,
	)
	if err != nil {
		return ConversationWindow{}, err
	}
	defer rows.Close()

	var window ConversationWindow
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Text, &msg.Timestamp, &msg.Role); err != nil {
			return ConversationWindow{}, err
		}
		window.Messages = append(window.Messages, msg)
	}
	return window, rows.Err()
}

func (s *SQLiteStore) SaveResult(ctx context.Context, customerID, waID string, result ClassificationResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classificacoes (
			user_id, classificacao, confianca, contexto,
			classificacao_especifica, sugestao_melhoria,
			tokens_utilizados, tempo_processamento_ms, status, wa_id
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'concluido', ?)`,
		customerID, result.Tag, result.Confidence, result.Justification,
		result.SpecificDetail, result.ImprovementNote,
		result.TokensUsed, result.ProcessingTimeMS, waID,
	)
	return err
}

func (s *SQLiteStore) LookupWAID(ctx context.Context, customerID string) (string, error) {
	var waID string
	err := s.db.QueryRowContext(ctx,
		"SELECT wa_id FROM customers WHERE id = ?", customerID,
	).Scan(&waID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return waID, err
}

func (s *SQLiteStore) ListResults(ctx context.Context) ([]StoredClassification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, wa_id, classificacao, confianca, contexto,
		        classificacao_especifica, sugestao_melhoria,
		        tokens_utilizados, tempo_processamento_ms, data_classificacao
		 FROM classificacoes
		 ORDER BY data_classificacao DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredClassification
	for rows.Next() {
		var r StoredClassification
		if err := rows.Scan(
			&r.CustomerID, &r.WAID, &r.Tag, &r.Confidence, &r.Justification,
			&r.SpecificDetail, &r.ImprovementNote,
			&r.TokensUsed, &r.ProcessingTimeMS, &r.ClassifiedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertChatMessage seeds one chat_history row; used by tests and
// local tooling.
func (s *SQLiteStore) InsertChatMessage(ctx context.Context, customerID string, msg Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (customer_id, message, message_type, message_date)
		 VALUES (?, ?, ?, ?)`,
		customerID, msg.Text, msg.Role, msg.Timestamp,
	)
	return err
}

// InsertCustomer seeds one customers row.
func (s *SQLiteStore) InsertCustomer(ctx context.Context, customerID, waID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO customers (id, wa_id) VALUES (?, ?)`,
		customerID, waID,
	)
	return err
}
