package service

import "errors"

var (
	// ErrInvalidSymptom is returned when a symptom entry fails validation
	ErrInvalidSymptom = errors.New("invalid symptom entry")
	// ErrSessionNotFound is returned when a chat session id does not exist
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrInvalidMessage is returned when a chat message fails validation
	ErrInvalidMessage = errors.New("invalid chat message")
	// ErrInvalidImportDocument is returned when an import document has the wrong shape
	ErrInvalidImportDocument = errors.New("invalid import document")
	// ErrUnsupportedExportVersion is returned for a backup from another major version
	ErrUnsupportedExportVersion = errors.New("unsupported export version")
	// ErrBackupNotConfigured is returned when no backup storage is available
	ErrBackupNotConfigured = errors.New("backup storage not configured")
)
