package main

import (
	"context"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/logger"
	"donation-widget/internal/projectfile"
	"donation-widget/internal/validation"
)

// seedProject stores the project file named by PROJECT_FILE so it can be
// served by id right after start.
func seedProject(ctx context.Context, path string, store interfaces.ProjectStore) {
	if path == "" {
		return
	}

	project, err := projectfile.Load(path)
	if err != nil {
		logger.GetLogger().Error().
			Err(err).
			Str("file", path).
			Msg("Error loading project file")
		return
	}

	if verdict := validation.Validate(project); !verdict.Valid {
		logger.GetLogger().Error().
			Str("file", path).
			Interface("issues", verdict.Issues).
			Msg("Project file is not publishable, skipping")
		return
	}

	if err := store.SaveProject(ctx, project); err != nil {
		logger.GetLogger().Error().
			Err(err).
			Str("projectId", project.ID).
			Msg("Error saving seeded project")
		return
	}

	logger.GetLogger().Info().
		Str("projectId", project.ID).
		Str("name", project.Name).
		Msg("Seeded project")
}
