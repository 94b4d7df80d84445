package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itzmeanjan/decds/pkg/blob"
	"github.com/itzmeanjan/decds/pkg/consts"
)

func breakCmd() *cobra.Command {
	var targetDir string

	cmd := &cobra.Command{
		Use:   "break <blob-path>",
		Short: "Split a data blob into erasure-coded, proof-carrying chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobPath := args[0]

			data, err := os.ReadFile(blobPath)
			if err != nil {
				return errors.Wrapf(err, "reading blob %q", blobPath)
			}
			logrus.WithFields(logrus.Fields{"path": blobPath, "size": formatBytes(len(data))}).Info("read blob")

			b, err := blob.New(data)
			if err != nil {
				return err
			}
			header := b.Header()
			logrus.WithFields(logrus.Fields{
				"digest":          header.Digest().String(),
				"root_commitment": header.RootCommitment().String(),
				"num_chunksets":   header.NumChunksets(),
				"num_chunks":      header.NumChunks(),
			}).Info("erasure-coded blob")

			dir, err := targetDirectoryPath(blobPath, targetDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrapf(err, "creating target directory %q", dir)
			}

			logrus.Info("writing erasure-coded chunks")
			if err := writeBlobMetadata(dir, header); err != nil {
				return err
			}
			for shareID := 0; shareID < consts.NumCoded; shareID++ {
				share, err := b.GetShare(shareID)
				if err != nil {
					return err
				}
				if err := writeBlobShare(dir, shareID, share); err != nil {
					return err
				}
			}
			logrus.WithField("dir", dir).Info("erasure-coded chunks placed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetDir, "target-dir", "o", "", "target directory for erasure-coded chunks")
	return cmd
}
