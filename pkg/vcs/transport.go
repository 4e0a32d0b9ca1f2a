package vcs

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/net/http/httpproxy"
)

const defaultSSHUser = "git"

// default private keys looked up under ~/.ssh, in order
var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// Transport carries connection settings to a remote
type Transport struct {
	Auth  transport.AuthMethod
	Proxy transport.ProxyOptions
}

// TransportOptions tune how credentials are looked up
type TransportOptions struct {
	// Home is the user's home directory, where ~/.ssh is found. Defaults to os.UserHomeDir().
	Home string

	// KeyFile is an explicit private key used for ssh remotes
	KeyFile string

	// Env looks up proxy environment variables. Defaults to os.Getenv.
	Env func(string) string
}

// TransportFor resolves the proxy and credentials to use for a remote URL.
//
// Proxies are taken from the environment variable matching the URL scheme
// (HTTPS_PROXY, HTTP_PROXY, honoring NO_PROXY), or ALL_PROXY for ssh.
// SSH remotes authenticate with the first private key found in ~/.ssh,
// falling back to the ssh agent.
func TransportFor(rawURL string, opts TransportOptions) (Transport, error) {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return Transport{}, ErrInvalidURL.Wrap(err)
	}
	if opts.Env == nil {
		opts.Env = os.Getenv
	}

	var t Transport
	t.Proxy, err = proxyFor(ep, opts.Env)
	if err != nil {
		return Transport{}, err
	}

	if ep.Protocol == "ssh" {
		t.Auth, err = sshAuth(ep, opts)
		if err != nil {
			return Transport{}, ErrAuth.Wrap(err)
		}
	}
	return t, nil
}

func getenvAny(env func(string) string, names ...string) string {
	for _, name := range names {
		if v := env(name); v != "" {
			return v
		}
	}
	return ""
}

func proxyFor(ep *transport.Endpoint, env func(string) string) (transport.ProxyOptions, error) {
	var proxyURL string
	switch ep.Protocol {
	case "http", "https":
		cfg := httpproxy.Config{
			HTTPProxy:  getenvAny(env, "HTTP_PROXY", "http_proxy"),
			HTTPSProxy: getenvAny(env, "HTTPS_PROXY", "https_proxy"),
			NoProxy:    getenvAny(env, "NO_PROXY", "no_proxy"),
		}
		target := &url.URL{Scheme: ep.Protocol, Host: ep.Host}
		if ep.Port > 0 {
			target.Host = net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
		}
		u, err := cfg.ProxyFunc()(target)
		if err != nil {
			return transport.ProxyOptions{}, ErrInvalidURL.Wrap(err)
		}
		if u != nil {
			proxyURL = u.String()
		}
	case "ssh":
		proxyURL = getenvAny(env, "ALL_PROXY", "all_proxy")
	default:
		return transport.ProxyOptions{}, nil
	}

	if proxyURL == "" {
		return transport.ProxyOptions{}, nil
	}
	opts := transport.ProxyOptions{URL: proxyURL}
	if err := opts.Validate(); err != nil {
		return transport.ProxyOptions{}, ErrInvalidURL.Wrap(err)
	}
	return opts, nil
}

func sshAuth(ep *transport.Endpoint, opts TransportOptions) (transport.AuthMethod, error) {
	user := ep.User
	if user == "" {
		user = defaultSSHUser
	}

	if opts.KeyFile != "" {
		return ssh.NewPublicKeysFromFile(user, opts.KeyFile, "")
	}

	home := opts.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return nil, err
		}
	}
	for _, name := range defaultKeyFiles {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		auth, err := ssh.NewPublicKeysFromFile(user, path, "")
		if err != nil {
			// passphrase-protected or unsupported key: try the next one
			continue
		}
		return auth, nil
	}
	return ssh.NewSSHAgentAuth(user)
}
