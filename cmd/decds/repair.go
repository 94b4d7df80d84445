package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itzmeanjan/decds/pkg/blob"
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/metrics"
)

func repairCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "repair <chunks-dir>",
		Short: "Reconstruct the original blob from erasure-coded chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if outputPath == "" {
				return errors.New("--output is required")
			}

			header, err := readBlobMetadata(dir)
			if err != nil {
				return errors.Wrap(err, "reading blob metadata")
			}

			reg := prometheus.NewRegistry()
			m, err := metrics.New(reg)
			if err != nil {
				return errors.Wrap(err, "registering metrics")
			}

			rb := blob.NewRepairingBlob(header)
			rb.SetMetrics(m)

			paths := walkShareFiles(dir, header.NumChunksets())
			logrus.WithField("count", len(paths)).Info("feeding chunks into repair")

			for _, path := range paths {
				c, err := readProofCarryingChunk(path)
				if err != nil {
					logrus.WithError(err).WithField("path", path).Warn("could not read chunk")
					continue
				}
				if err := rb.AddChunk(&c); err != nil {
					var derr *decdserr.Error
					if errors.As(err, &derr) && derr.Ignorable() {
						continue
					}
					logrus.WithError(err).WithField("path", path).Warn("chunk rejected")
				}
			}

			out, err := os.Create(outputPath)
			if err != nil {
				return errors.Wrapf(err, "creating output file %q", outputPath)
			}
			defer out.Close()

			for chunksetID := 0; chunksetID < header.NumChunksets(); chunksetID++ {
				ready, err := rb.IsChunksetReadyToRepair(chunksetID)
				if err != nil {
					return err
				}
				if !ready {
					return decdserr.ChunksetNotYetReadyToRepair(chunksetID)
				}
				repaired, err := rb.GetRepairedChunkset(chunksetID)
				if err != nil {
					return err
				}
				if _, err := out.Write(repaired); err != nil {
					return errors.Wrapf(err, "writing reconstructed chunkset %d to %q", chunksetID, outputPath)
				}
				logrus.WithField("chunkset", chunksetID).Info("repaired")
			}

			logrus.WithField("path", outputPath).Info("blob reconstructed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "path to write the reconstructed blob to")
	return cmd
}
