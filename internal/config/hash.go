package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const checksumFile = ".checksums"

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// ChecksumPath returns the manifest location for a config file.
func ChecksumPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), checksumFile)
}

// Lock hashes configPath and writes the .checksums manifest beside it.
func Lock(configPath string) (*ChecksumManifest, error) {
	hash, err := ComputeBlake3Hash(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", configPath, err)
	}

	manifest := &ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      map[string]string{filepath.Base(configPath): hash},
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checksums: %w", err)
	}

	// Restrictive permissions: the manifest vouches for the secret-bearing file.
	if err := os.WriteFile(ChecksumPath(configPath), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write checksums: %w", err)
	}
	return manifest, nil
}

// LoadChecksums reads the manifest beside configPath.
func LoadChecksums(configPath string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(ChecksumPath(configPath))
	if err != nil {
		return nil, err
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	return &manifest, nil
}

// VerifyIntegrity checks configPath against its .checksums manifest.
// A missing manifest passes with a warning; a mismatch fails.
func VerifyIntegrity(configPath string) (*IntegrityResult, error) {
	result := &IntegrityResult{Passed: true}

	manifest, err := LoadChecksums(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no %s manifest found at %s; run 'sensorgate config lock' to enable integrity verification",
					checksumFile, ChecksumPath(configPath)))
			return result, nil
		}
		return nil, err
	}

	name := filepath.Base(configPath)
	expected, ok := manifest.Hashes[name]
	if !ok {
		result.Passed = false
		result.Errors = append(result.Errors, fmt.Sprintf("file %s not in %s manifest", name, checksumFile))
		return result, nil
	}

	actual, err := ComputeBlake3Hash(configPath)
	if err != nil {
		return nil, err
	}
	if actual != expected {
		result.Passed = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("hash mismatch for %s (expected %s, got %s); if the edit was intentional run 'sensorgate config lock'",
				name, expected, actual))
	}
	return result, nil
}
