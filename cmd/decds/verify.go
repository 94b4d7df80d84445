package main

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <chunks-dir>",
		Short: "Validate proof of inclusion for every erasure-coded chunk on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			header, err := readBlobMetadata(dir)
			if err != nil {
				return errors.Wrap(err, "reading blob metadata")
			}

			paths := walkShareFiles(dir, header.NumChunksets())
			logrus.WithField("count", len(paths)).Info("validating chunks")

			var valid, invalid int
			for _, path := range paths {
				c, err := readProofCarryingChunk(path)
				if err != nil {
					logrus.WithError(err).WithField("path", path).Warn("could not read chunk")
					invalid++
					continue
				}
				if header.ValidateChunk(&c) {
					valid++
				} else {
					logrus.WithField("path", path).Warn("chunk failed proof validation")
					invalid++
				}
			}

			logrus.WithFields(logrus.Fields{"valid": valid, "invalid": invalid}).Info("verification complete")
			if invalid > 0 {
				return errors.Newf("%d of %d chunks failed validation", invalid, len(paths))
			}
			return nil
		},
	}
}
