package blob

import "io"

// ChunksetFetcher fetches the reconstructed bytes of one chunkset,
// given its ID. A RepairingBlob-backed fetcher typically blocks until
// enough chunks have arrived and then calls GetRepairedChunkset.
type ChunksetFetcher func(chunksetID int) (io.Reader, error)

// StreamReader concatenates a blob's chunksets, fetched one at a time
// through a ChunksetFetcher, into a single sequential io.Reader. This
// lets a caller stream a reconstructed blob to its final destination
// without ever holding the whole thing in memory — the next chunkset
// is only fetched once the current one has been fully read.
type StreamReader struct {
	fetch        ChunksetFetcher
	numChunksets int

	next    int
	current io.Reader
}

// NewStreamReader returns a StreamReader over a header's chunksets,
// pulling each one's bytes from fetch in order.
func NewStreamReader(header *Header, fetch ChunksetFetcher) *StreamReader {
	return &StreamReader{fetch: fetch, numChunksets: header.NumChunksets()}
}

// Read implements io.Reader, advancing to the next chunkset once the
// current one is exhausted.
func (s *StreamReader) Read(p []byte) (int, error) {
	for {
		if s.current == nil {
			if s.next >= s.numChunksets {
				return 0, io.EOF
			}
			r, err := s.fetch(s.next)
			if err != nil {
				return 0, err
			}
			s.current = r
			s.next++
		}

		n, err := s.current.Read(p)
		if err == io.EOF {
			s.current = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}
