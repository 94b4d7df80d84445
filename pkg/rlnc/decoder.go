package rlnc

import "errors"

// ErrLinearlyDependent is returned by Decode when the supplied fragment
// contributes no new information given the fragments already absorbed.
// It is routine and expected when fragments may arrive in any order or
// be duplicated; callers should treat it as a no-op, not a failure.
var ErrLinearlyDependent = errors.New("rlnc: fragment is linearly dependent on the current basis")

// ErrNotFullRank is returned by GetDecodedData (the final reconstruction
// step) when fewer than numPieces independent fragments have been absorbed.
var ErrNotFullRank = errors.New("rlnc: not enough independent fragments to decode")

// Decoder incrementally absorbs coded fragments via Gaussian
// elimination and reconstructs the original data once it has observed
// numPieces linearly independent fragments.
type Decoder struct {
	numPieces int
	pieceLen  int

	// rows[i] is nil until a fragment has been reduced to have its
	// pivot at column i; rows[i][:numPieces] are coefficients (row
	// echelon form, rows[i][i] == 1) and rows[i][numPieces:] is coded
	// data.
	rows [][]byte
	rank int
}

// NewDecoder returns a Decoder for fragments of numPieces coefficients
// followed by pieceLen bytes of coded data each.
func NewDecoder(pieceLen, numPieces int) (*Decoder, error) {
	if numPieces <= 0 {
		return nil, ErrTooFewPieces
	}
	return &Decoder{numPieces: numPieces, pieceLen: pieceLen, rows: make([][]byte, numPieces)}, nil
}

// IsFullRank reports whether enough independent fragments have been
// absorbed to reconstruct the original data.
func (d *Decoder) IsFullRank() bool {
	return d.rank == d.numPieces
}

// Decode absorbs one coded fragment (numPieces coefficient bytes
// followed by pieceLen data bytes). It returns ErrLinearlyDependent if
// the fragment added no new information to the current basis.
func (d *Decoder) Decode(fragment []byte) error {
	if len(fragment) != d.numPieces+d.pieceLen {
		return errors.New("rlnc: fragment has the wrong length")
	}

	row := append([]byte(nil), fragment...)

	for col := 0; col < d.numPieces; col++ {
		if row[col] == 0 {
			continue
		}
		if d.rows[col] == nil {
			scale := gfInv(row[col])
			gfScaleVec(row, scale)
			d.rows[col] = row
			d.rank++
			return nil
		}
		gfAddVec(row, d.rows[col], row[col])
	}

	return ErrLinearlyDependent
}

// GetDecodedData reconstructs and returns the original byte slice. It
// requires IsFullRank to be true; callers should treat the Decoder as
// consumed afterward, mirroring the one-shot repair() this package is
// grounded on.
func (d *Decoder) GetDecodedData() ([]byte, error) {
	if !d.IsFullRank() {
		return nil, ErrNotFullRank
	}

	// Back-substitute so every pivot row's coefficient vector is an
	// identity row, then the data columns directly hold the pieces.
	for col := d.numPieces - 1; col >= 0; col-- {
		pivotRow := d.rows[col]
		for above := 0; above < col; above++ {
			other := d.rows[above]
			if other[col] == 0 {
				continue
			}
			gfAddVec(other, pivotRow, other[col])
		}
	}

	padded := make([]byte, 0, d.numPieces*d.pieceLen)
	for i := 0; i < d.numPieces; i++ {
		padded = append(padded, d.rows[i][d.numPieces:]...)
	}

	return trimPadding(padded), nil
}

// trimPadding strips the trailing zero padding and the end-of-data
// marker byte appended by Encoder, recovering the original payload.
func trimPadding(padded []byte) []byte {
	end := len(padded)
	for end > 0 && padded[end-1] == 0 {
		end--
	}
	if end == 0 {
		return nil
	}
	// padded[end-1] is the marker byte.
	return padded[:end-1]
}
