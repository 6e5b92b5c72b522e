// Package hash provides digest helpers.
package hash

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5 returns the lowercase hex MD5 digest of s.
func MD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
