package runner

import (
	"bytes"
	"encoding/json"
	"path/filepath"
)

// runMetadata is persisted as metadata.json. Exactly one of Command and Recipe is set.
type runMetadata struct {
	Command             string   `json:"command,omitempty"`
	Recipe              string   `json:"recipe,omitempty"`
	Repository          string   `json:"repository"`
	Timestamp           string   `json:"timestamp"`
	ExitCode            int      `json:"exit_code"`
	ExitCodeDescription string   `json:"exit_code_description"`
	RecipeSteps         []string `json:"recipe_steps,omitempty"`
}

// persistArtifacts always writes all three files, so a missing file means the repository never ran.
func (engine *Engine) persistArtifacts(repositoryLogDirectory string, result Result, metadata runMetadata) error {
	if directoryError := engine.fileSystem.MkdirAll(repositoryLogDirectory, artifactDirectoryPermissionsConstant); directoryError != nil {
		return ArtifactWriteError{Path: repositoryLogDirectory, Cause: directoryError}
	}

	metadataContent, encodeError := encodeMetadata(metadata)
	if encodeError != nil {
		return ArtifactWriteError{Path: MetadataFileNameConstant, Cause: encodeError}
	}

	artifacts := []struct {
		name    string
		content []byte
	}{
		{name: StandardOutputLogNameConstant, content: []byte(result.StandardOutput)},
		{name: StandardErrorLogNameConstant, content: []byte(result.StandardError)},
		{name: MetadataFileNameConstant, content: metadataContent},
	}
	for _, artifact := range artifacts {
		artifactPath := filepath.Join(repositoryLogDirectory, artifact.name)
		if writeError := engine.fileSystem.WriteFile(artifactPath, artifact.content, artifactFilePermissionsConstant); writeError != nil {
			return ArtifactWriteError{Path: artifactPath, Cause: writeError}
		}
	}
	return nil
}

// encodeMetadata keeps shell operators such as > and & literal in the stored command.
func encodeMetadata(metadata runMetadata) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", metadataIndentConstant)
	if encodeError := encoder.Encode(metadata); encodeError != nil {
		return nil, encodeError
	}
	return buffer.Bytes(), nil
}
