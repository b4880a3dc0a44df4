package storage

import (
	"context"
	"fmt"

	"github.com/ClimateCodeFoundation/zontem/internal/config"
)

// DeploymentMode represents where run artifacts are published
type DeploymentMode string

const (
	DeploymentLocal DeploymentMode = "local"
	DeploymentGCS   DeploymentMode = "gcs"
)

// NewClient creates a storage client based on deployment mode and configuration
func NewClient(ctx context.Context, deploymentMode DeploymentMode, cfg *config.Config) (Client, error) {
	switch deploymentMode {
	case DeploymentLocal:
		outputDir := cfg.OutputDir
		if outputDir == "" {
			outputDir = "results" // Default fallback
		}

		localClient, err := NewLocalClient(outputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
		}
		return localClient, nil

	case DeploymentGCS:
		gcsClient, err := NewGCSClient(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
		}
		return gcsClient, nil

	default:
		return nil, fmt.Errorf("unsupported deployment mode: %s", deploymentMode)
	}
}
