package vcs

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestTransportProxy(t *testing.T) {
	env := envOf(map[string]string{
		"HTTPS_PROXY": "http://proxy.example.com:3128",
		"HTTP_PROXY":  "http://plain-proxy.example.com:3128",
		"ALL_PROXY":   "socks5://socks.example.com:1080",
		"NO_PROXY":    "internal.example.com",
	})

	for _, toPin := range []struct {
		url   string
		proxy string
	}{
		{url: "https://github.com/org/repo.git", proxy: "http://proxy.example.com:3128"},
		{url: "http://github.com/org/repo.git", proxy: "http://plain-proxy.example.com:3128"},
		{url: "https://internal.example.com/org/repo.git", proxy: ""},
		{url: "file:///tmp/repo", proxy: ""},
	} {
		tc := toPin
		t.Run(tc.url, func(t *testing.T) {
			tr, err := TransportFor(tc.url, TransportOptions{Env: env, Home: t.TempDir()})
			require.NoError(t, err)
			assert.Equal(t, tc.proxy, tr.Proxy.URL)
			assert.Nil(t, tr.Auth)
		})
	}
}

func writeKey(t *testing.T, path string) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
}

func TestTransportSSHKeyLookup(t *testing.T) {
	home := t.TempDir()
	writeKey(t, filepath.Join(home, ".ssh", "id_ed25519"))
	env := envOf(map[string]string{"ALL_PROXY": "socks5://socks.example.com:1080"})

	tr, err := TransportFor("git@github.com:org/repo.git", TransportOptions{Home: home, Env: env})
	require.NoError(t, err)

	keys, ok := tr.Auth.(*gitssh.PublicKeys)
	require.True(t, ok)
	assert.Equal(t, "git", keys.User)
	assert.Equal(t, "socks5://socks.example.com:1080", tr.Proxy.URL)

	tr, err = TransportFor("ssh://deploy@example.com/org/repo.git", TransportOptions{Home: home, Env: env})
	require.NoError(t, err)
	keys, ok = tr.Auth.(*gitssh.PublicKeys)
	require.True(t, ok)
	assert.Equal(t, "deploy", keys.User)
}

func TestTransportSSHExplicitKey(t *testing.T) {
	key := filepath.Join(t.TempDir(), "deploy_key")
	writeKey(t, key)

	tr, err := TransportFor("git@github.com:org/repo.git", TransportOptions{KeyFile: key, Home: t.TempDir(), Env: envOf(nil)})
	require.NoError(t, err)
	assert.IsType(t, &gitssh.PublicKeys{}, tr.Auth)

	_, err = TransportFor("git@github.com:org/repo.git", TransportOptions{KeyFile: key + ".missing", Env: envOf(nil)})
	require.ErrorIs(t, err, ErrAuth)
}

func TestTransportInvalidProxy(t *testing.T) {
	env := envOf(map[string]string{"ALL_PROXY": "::not a url"})
	home := t.TempDir()
	writeKey(t, filepath.Join(home, ".ssh", "id_rsa"))

	_, err := TransportFor("git@github.com:org/repo.git", TransportOptions{Home: home, Env: env})
	require.ErrorIs(t, err, ErrInvalidURL)
}
