// Package cache manages the process-wide cache of git repositories.
//
// The cache holds one bare repository per distinct remote URL, under
// <root>/git/<key>, where the key is a filesystem-safe encoding of the URL.
// Components referring to the same URL share the same cache repository, which
// other checkouts borrow objects from through git alternates.
//
// Fetches into a cache repository are serialized per URL, and a fetch of the
// same refs from the same URL happens at most once per Cache instance.
package cache
