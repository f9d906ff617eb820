package repository

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Checksum companion suffixes.
const (
	SHA1Suffix = ".sha1"
	MD5Suffix  = ".md5"
)

// Checksums returns the hex SHA-1 and MD5 digests of data.
func Checksums(data []byte) (sha1Hex, md5Hex string) {
	s := sha1.Sum(data)
	m := md5.Sum(data)
	return hex.EncodeToString(s[:]), hex.EncodeToString(m[:])
}

// parseChecksum extracts the digest from a checksum file, which may carry a
// file name after the hash.
func parseChecksum(data []byte) string {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
