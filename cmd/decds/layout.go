package main

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/itzmeanjan/decds/pkg/blob"
	"github.com/itzmeanjan/decds/pkg/chunk"
	"github.com/itzmeanjan/decds/pkg/consts"
)

const metadataFileName = "metadata.commit"

// formatBytes renders n using binary-prefix, single-decimal units, the
// same rounding the original CLI used.
func formatBytes(n int) string {
	suffixes := []string{"B", "KB", "MB", "GB"}
	size := float64(n)
	index := 0
	for size >= 1024.0 && index < len(suffixes)-1 {
		size /= 1024.0
		index++
	}
	return fmt.Sprintf("%.1f%s", size, suffixes[index])
}

// targetDirectoryPath picks the directory break should write its output
// to: optTargetDir itself when given and not already present, a random
// suffix appended to it when it does already exist, or a name derived
// from blobPath's base name when optTargetDir is empty.
func targetDirectoryPath(blobPath, optTargetDir string) (string, error) {
	if optTargetDir == "" {
		return randomSuffixedName(filepath.Base(blobPath)), nil
	}
	if _, err := os.Stat(optTargetDir); err == nil {
		return randomSuffixedName(optTargetDir), nil
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "checking target directory %q", optTargetDir)
	}
	return optTargetDir, nil
}

func randomSuffixedName(prefix string) string {
	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	return prefix + "-" + hex.EncodeToString(suffix[:])
}

// writeBlobMetadata persists header at <targetDir>/metadata.commit.
func writeBlobMetadata(targetDir string, header *blob.Header) error {
	path := filepath.Join(targetDir, metadataFileName)
	if err := os.WriteFile(path, header.ToBytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing blob metadata to %q", path)
	}
	return nil
}

// writeBlobShare persists one share (one chunk per chunkset) at
// <targetDir>/chunkset.<id>/share<shareID>.data.
func writeBlobShare(targetDir string, shareID int, share []chunk.ProofCarryingChunk) error {
	for chunksetID, c := range share {
		dir := filepath.Join(targetDir, fmt.Sprintf("chunkset.%d", chunksetID))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating chunkset directory %q", dir)
		}
		path := filepath.Join(dir, fmt.Sprintf("share%02d.data", shareID))
		if err := os.WriteFile(path, c.ToBytes(), 0o644); err != nil {
			return errors.Wrapf(err, "writing chunk to %q", path)
		}
	}
	return nil
}

// readBlobMetadata reads and decodes a header from
// <targetDir>/metadata.commit, rejecting trailing garbage bytes.
func readBlobMetadata(targetDir string) (*blob.Header, error) {
	path := filepath.Join(targetDir, metadataFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading blob metadata from %q", path)
	}
	header, n, err := blob.HeaderFromBytes(raw)
	if err != nil {
		return nil, err
	}
	if n != len(raw) {
		return nil, errors.Newf("%s is %d bytes longer than it should be", metadataFileName, len(raw)-n)
	}
	return header, nil
}

// readProofCarryingChunk reads and decodes one fragment file, rejecting
// trailing garbage bytes.
func readProofCarryingChunk(path string) (chunk.ProofCarryingChunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return chunk.ProofCarryingChunk{}, errors.Wrapf(err, "reading chunk from %q", path)
	}
	c, n, err := chunk.FromBytes(raw)
	if err != nil {
		return chunk.ProofCarryingChunk{}, err
	}
	if n != len(raw) {
		return chunk.ProofCarryingChunk{}, errors.Newf("%s is %d bytes longer than it should be", path, len(raw)-n)
	}
	return c, nil
}

// walkShareFiles lists every chunk file on disk under targetDir, across
// all chunkset.* directories and share*.data files, for a header with
// numChunksets chunksets and consts.NumCoded shares each.
func walkShareFiles(targetDir string, numChunksets int) []string {
	var paths []string
	for chunksetID := 0; chunksetID < numChunksets; chunksetID++ {
		for shareID := 0; shareID < consts.NumCoded; shareID++ {
			path := filepath.Join(targetDir, fmt.Sprintf("chunkset.%d", chunksetID), fmt.Sprintf("share%02d.data", shareID))
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return paths
}
