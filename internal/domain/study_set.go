package domain

import "context"

// StudySetFile is the file metadata stored alongside a study set.
type StudySetFile struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

// StudySetRepository reads study-set records. The pipeline never writes them.
type StudySetRepository interface {
	GetSourceFile(ctx context.Context, studySetID string) (*StudySetFile, error)
}
