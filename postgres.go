package main

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads the production chat database and writes
// classification records into it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ExistsResult(ctx context.Context, customerID string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM classificacoes WHERE user_id = $1", customerID,
	).Scan(&count)
	return count > 0, err
}

func (s *PostgresStore) FetchWindow(ctx context.Context, customerID string, limit int) (ConversationWindow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT message, message_date, message_type
		 FROM chat_history
		 WHERE customer_id = $1 AND message_type IN ($2, $3)
		 ORDER BY message_date DESC
		 LIMIT $4`,
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

func (s *PostgresStore) SaveResult(ctx context.Context, customerID, waID string, result ClassificationResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO classificacoes (
			user_id, classificacao, confianca, contexto,
			classificacao_especifica, sugestao_melhoria,
			tokens_utilizados, tempo_processamento_ms, status, wa_id
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'concluido', $9)`,
		customerID, result.Tag, result.Confidence, result.Justification,
		result.SpecificDetail, result.ImprovementNote,
		result.TokensUsed, result.ProcessingTimeMS, waID,
	)
	return err
}

func (s *PostgresStore) LookupWAID(ctx context.Context, customerID string) (string, error) {
	var waID string
	err := s.pool.QueryRow(ctx,
		"SELECT wa_id FROM customers WHERE id = $1", customerID,
	).Scan(&waID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return waID, err
}

func (s *PostgresStore) ListResults(ctx context.Context) ([]StoredClassification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, COALESCE(wa_id, ''), classificacao, confianca, COALESCE(contexto, ''),
		        COALESCE(classificacao_especifica, ''), COALESCE(sugestao_melhoria, ''),
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

// InitSchema creates the classification tables if missing. The chat
// tables are owned by the upstream system and are not created here.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS classificacoes (
		id                       BIGSERIAL PRIMARY KEY,
		user_id                  TEXT NOT NULL,
		classificacao            TEXT NOT NULL,
		confianca                DOUBLE PRECISION NOT NULL,
		contexto                 TEXT DEFAULT '',
		classificacao_especifica TEXT DEFAULT '',
		sugestao_melhoria        TEXT DEFAULT '',
		tokens_utilizados        INTEGER DEFAULT 0,
		tempo_processamento_ms   INTEGER DEFAULT 0,
		status                   TEXT DEFAULT 'concluido',
		wa_id                    TEXT DEFAULT '',
		data_classificacao       TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_classificacoes_user ON classificacoes(user_id);
	`)
	return err
}
