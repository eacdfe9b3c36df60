package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/argo-dashboard/internal/config"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

const (
	outputDir  = "./config"
	schemaName = "dashboard-config.json"
	sampleName = "dashboard-config.yaml"
)

func main() {
	schemaPath := filepath.Join(outputDir, schemaName)
	samplePath := filepath.Join(outputDir, sampleName)

	if err := validatePaths(schemaPath, samplePath); err != nil {
		log.Fatal(err)
	}

	if err := generateSchemaFile(schemaPath); err != nil {
		log.Fatal(err)
	}

	if err := generateSampleConfig(config.Default(), samplePath, schemaName); err != nil {
		log.Fatal(err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}

// generateSchemaFile writes the config JSON schema, creating parent directories.
func generateSchemaFile(path string) error {
	schemaJSON, err := config.GenerateSchema()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigSchemaFailure, err, "failed to create directory for %s", path)
	}

	if err := os.WriteFile(path, []byte(schemaJSON), 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigSchemaFailure, err, "failed to write schema %s", path)
	}

	return nil
}

// generateSampleConfig writes cfg as YAML with a schema reference. An existing file is kept.
func generateSampleConfig(cfg *config.Config, path string, schema string) error {
	if err := validateSchemaName(schema); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigSchemaFailure, "failed to marshal sample config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigSchemaFailure, err, "failed to create directory for %s", path)
	}

	content := append([]byte(getSchemaReference(schema)), out...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigSchemaFailure, err, "failed to write sample config %s", path)
	}

	log.Printf("Sample config successfully generated at %s", path)

	return nil
}

func validatePaths(schemaPath, samplePath string) error {
	if schemaPath == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "schema path cannot be empty")
	}

	if samplePath == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return errors.Newf(errors.ErrCodeInvalidParameter, "schema name %s must have .json extension", name)
	}

	return nil
}

func getSchemaReference(name string) string {
	return "# yaml-language-server: $schema=" + name + "\n"
}
