package simulation

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"bondmc/internal/errs"
)

// pcgStream fixes the PCG increment; trials differ by state seed only.
const pcgStream = 0x9e3779b97f4a7c15

// TrialSeed derives the generator seed of one trial from the run seed, so a
// run is reproducible whichever mode or pool size executes it.
func TrialSeed(seed uint64, trial int) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(trial))
	return xxhash.Sum64(buf[:])
}

// entropySeed draws a run seed from r, skipping the reserved zero value.
func entropySeed(r io.Reader) (uint64, error) {
	if r == nil {
		r = rand.Reader
	}
	var buf [8]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrRandomSource, err)
		}
		if seed := binary.LittleEndian.Uint64(buf[:]); seed != 0 {
			return seed, nil
		}
	}
}
