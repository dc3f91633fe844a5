package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"

	"corogen/internal/config"
)

// Digest identifies one cached lowering.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// configKey holds the configuration fields that change the emitted IR.
// Jobs and cache settings are left out: they never affect the output.
type configKey struct {
	NewAlign  int
	CharWidth int
	DebugInfo bool
	Validate  bool
}

// ComputeDigest hashes the cache schema, the configuration that affects
// lowering and the source text.
func ComputeDigest(src []byte, cfg config.Config) (Digest, error) {
	key, err := msgpack.Marshal(&configKey{
		NewAlign:  cfg.Target.NewAlign,
		CharWidth: cfg.Target.CharWidth,
		DebugInfo: cfg.Lower.DebugInfo,
		Validate:  cfg.Lower.Validate,
	})
	if err != nil {
		return Digest{}, err
	}
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	h.Write(schema[:])
	h.Write(key)
	h.Write(src)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}
