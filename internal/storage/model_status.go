package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/penny/internal/model"
)

const modelStatusID = 1

// GetModelStatus returns the persisted status, or the default status when none
// has been written.
func (s *SQLiteStorage) GetModelStatus(ctx context.Context) (model.ModelStatus, error) {
	if err := validateContext(ctx); err != nil {
		return model.ModelStatus{}, err
	}

	var (
		isLoaded  bool
		modelPath sql.NullString
		provider  sql.NullString
		config    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT is_loaded, model_path, provider, provider_config FROM model_status WHERE id = ?`,
		modelStatusID,
	).Scan(&isLoaded, &modelPath, &provider, &config)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultModelStatus(), nil
	}
	if err != nil {
		return model.ModelStatus{}, fmt.Errorf("failed to query model status: %w", err)
	}

	status := model.DefaultModelStatus()
	status.IsLoaded = isLoaded
	status.ModelPath = nullableString(modelPath)
	if provider.Valid && provider.String != "" {
		status.Provider = provider.String
	}
	if config.Valid && config.String != "" {
		if err := json.Unmarshal([]byte(config.String), &status.ProviderConfig); err != nil {
			return model.ModelStatus{}, fmt.Errorf("failed to decode provider config: %w", err)
		}
		if status.ProviderConfig == nil {
			status.ProviderConfig = map[string]string{}
		}
	}
	return status, nil
}

// SetModelStatus replaces the persisted status. For providers other than local
// the loaded flag is stored false and the model path is dropped.
func (s *SQLiteStorage) SetModelStatus(ctx context.Context, provider string, config map[string]string, isLoaded bool, modelPath *string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(provider, "provider"); err != nil {
		return err
	}

	if provider != model.DefaultProvider {
		isLoaded = false
		modelPath = nil
	}
	if config == nil {
		config = map[string]string{}
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode provider config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM model_status`); err != nil {
		return fmt.Errorf("failed to clear model status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO model_status (id, is_loaded, model_path, provider, provider_config) VALUES (?, ?, ?, ?, ?)`,
		modelStatusID, isLoaded, modelPath, provider, string(configJSON))
	if err != nil {
		return fmt.Errorf("failed to insert model status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model status: %w", err)
	}

	slog.Debug("Saved model status", "provider", provider, "is_loaded", isLoaded)
	return nil
}

// DeleteModelStatus removes the persisted status.
func (s *SQLiteStorage) DeleteModelStatus(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM model_status`); err != nil {
		return fmt.Errorf("failed to delete model status: %w", err)
	}
	return nil
}
