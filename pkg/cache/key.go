package cache

import (
	"encoding/base64"
)

// Key derives a filesystem-safe cache key from a remote URL.
//
// The key is the unpadded URL-safe base64 encoding of the URL: two descriptors
// with the same URL always share the same key.
func Key(url string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(url))
}

// URLFromKey decodes a cache key back to the URL it was derived from
func URLFromKey(key string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", ErrInvalidKey.Wrap(err)
	}
	return string(b), nil
}
