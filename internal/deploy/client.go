package deploy

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"git.home.luguber.info/inful/blogpub/internal/config"

	bperrors "git.home.luguber.info/inful/blogpub/internal/errors"
)

const dialTimeout = 30 * time.Second

// Client is an SFTP session to the deploy target. It implements Remote.
type Client struct {
	ssh  *ssh.Client
	sftp *sftp.Client
	host string
}

// Connect dials the deploy target and opens an SFTP session.
//
// Authentication uses the private key file from deploy.key_path (the local
// secret the original scripts read from a fixed path). Host keys are checked
// against known_hosts unless insecure_ignore_host_key is set.
func Connect(cfg *config.DeployConfig) (*Client, error) {
	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", cfg.KeyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse private key %s: %w", cfg.KeyPath, err)
	}

	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	}

	slog.Info("Connecting to deploy target", "host", cfg.Host, "port", cfg.Port, "user", cfg.User)
	sshClient, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, bperrors.DialError(cfg.Host, err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, bperrors.DialError(cfg.Host, fmt.Errorf("open sftp session: %w", err))
	}

	return &Client{ssh: sshClient, sftp: sftpClient, host: cfg.Host}, nil
}

func hostKeyCallback(cfg *config.DeployConfig) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		slog.Warn("Host key verification disabled", "host", cfg.Host)
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicit opt-in
	}

	knownHostsPath := cfg.KnownHosts
	if knownHostsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory for known_hosts: %w", err)
		}
		knownHostsPath = home + "/.ssh/known_hosts"
	}

	cb, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", knownHostsPath, err)
	}
	return cb, nil
}

// Remote implementation

func (c *Client) Stat(p string) (os.FileInfo, error) { return c.sftp.Stat(p) }

func (c *Client) ReadDir(p string) ([]os.FileInfo, error) { return c.sftp.ReadDir(p) }

func (c *Client) MkdirAll(p string) error { return c.sftp.MkdirAll(p) }

func (c *Client) Create(p string) (io.WriteCloser, error) {
	f, err := c.sftp.Create(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (c *Client) Remove(p string) error { return c.sftp.Remove(p) }

func (c *Client) RemoveDirectory(p string) error { return c.sftp.RemoveDirectory(p) }

func (c *Client) Chtimes(p string, atime, mtime time.Time) error {
	return c.sftp.Chtimes(p, atime, mtime)
}

// Close tears down the SFTP session and SSH connection.
func (c *Client) Close() error {
	serr := c.sftp.Close()
	if err := c.ssh.Close(); err != nil {
		return err
	}
	return serr
}
