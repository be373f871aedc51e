package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"study-set-server/internal/domain"
)

const studySetsTable = "study_sets"

// SupabaseStudySetRepository implements the domain.StudySetRepository interface
type SupabaseStudySetRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseStudySetRepository creates a new Supabase study set repository
func NewSupabaseStudySetRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.StudySetRepository {
	return &SupabaseStudySetRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetSourceFile reads the file metadata of a study set
func (r *SupabaseStudySetRepository) GetSourceFile(ctx context.Context, studySetID string) (*domain.StudySetFile, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, domain.ErrStoreUnavailable
	}

	data, _, err := client.From(studySetsTable).
		Select("file_path,file_name,file_type", "", false).
		Eq("id", studySetID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get study set: %w", err)
	}

	return decodeStudySetFile(data)
}

func decodeStudySetFile(data []byte) (*domain.StudySetFile, error) {
	var rows []domain.StudySetFile
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrStudySetNotFound
	}
	return &rows[0], nil
}
