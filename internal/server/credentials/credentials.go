// Package credentials hashes and verifies account passwords.
//
// New hashes use argon2id in the PHC string format
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// with unpadded standard base64 for salt and key. bcrypt hashes ($2a$, $2b$,
// $2y$) are accepted by Verify so imported accounts keep working.
package credentials

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Params are the argon2id cost settings recorded in every hash.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams match the derivation cost used elsewhere in the server.
var DefaultParams = Params{Memory: 64 * 1024, Time: 1, Threads: 4, SaltLen: 16, KeyLen: 32}

// Tokens naming a cost above these bounds are malformed.
var (
	maxMemory = 4 * DefaultParams.Memory
	maxTime   = 4 * DefaultParams.Time
	maxKeyLen = uint32(1024)
)

var errMalformed = errors.New("malformed password hash")

// Hash derives a new self-describing hash of plaintext with a fresh random
// salt, so hashing the same input twice gives different tokens.
func Hash(plaintext string) (string, error) {
	return hashWith(plaintext, DefaultParams)
}

func hashWith(plaintext string, p Params) (string, error) {
	salt := common.GenerateRandByteArray(int(p.SaltLen))

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)
	key := argon2.IDKey(pw, salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext produced token. Mismatches and malformed
// tokens both yield false.
func Verify(plaintext, token string) bool {
	if isBcrypt(token) {
		return bcrypt.CompareHashAndPassword([]byte(token), []byte(plaintext)) == nil
	}

	p, salt, key, err := decode(token)
	if err != nil {
		return false
	}
	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)
	other := argon2.IDKey(pw, salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1
}

// NeedsRehash reports whether token was produced by something other than
// argon2id with DefaultParams.
func NeedsRehash(token string) bool {
	p, salt, key, err := decode(token)
	if err != nil {
		return true
	}
	return p.Memory != DefaultParams.Memory ||
		p.Time != DefaultParams.Time ||
		p.Threads != DefaultParams.Threads ||
		uint32(len(salt)) != DefaultParams.SaltLen ||
		uint32(len(key)) != DefaultParams.KeyLen
}

func isBcrypt(token string) bool {
	return strings.HasPrefix(token, "$2a$") ||
		strings.HasPrefix(token, "$2b$") ||
		strings.HasPrefix(token, "$2y$")
}

func decode(token string) (Params, []byte, []byte, error) {
	var p Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(token, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errMalformed
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformed
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, errMalformed
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, errMalformed
	}
	if p.Memory > maxMemory || p.Time > maxTime {
		return p, nil, nil, errMalformed
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errMalformed
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || uint32(len(key)) > maxKeyLen {
		return p, nil, nil, errMalformed
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
