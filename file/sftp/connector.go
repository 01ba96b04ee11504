// Package sftp stores files on an external server over SSH.
package sftp

import (
	"context"
	"io"
	"io/fs"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultSSHPort     = "22"
	defaultDialTimeout = 10 * time.Second
)

// Client is the subset of *sftp.Client used by the connector and its
// callers.
type Client interface {
	Stat(p string) (os.FileInfo, error)
	Mkdir(path string) error
	MkdirAll(path string) error
	Create(path string) (*sftp.File, error)
	Open(path string) (*sftp.File, error)
	ReadDir(p string) ([]os.FileInfo, error)
	Remove(path string) error
	RemoveDirectory(path string) error
}

// DialFunc opens an sftp session. The closer releases the underlying
// transport and is called after the client is closed.
type DialFunc func(ctx context.Context) (*sftp.Client, io.Closer, error)

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the connector logger.
func WithLogger(logger Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithKeysDir resolves the known hosts and private key file names relative
// to dir.
func WithKeysDir(dir string) Option {
	return func(c *Connector) {
		c.keysDir = dir
	}
}

// WithDialer replaces the SSH dialer.
func WithDialer(dial DialFunc) Option {
	return func(c *Connector) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// Connector opens one sftp session per Do call.
type Connector struct {
	cfg      config.File
	keysDir  string
	logger   Logger
	dial     DialFunc
	prepared atomic.Bool
}

// NewConnector creates a connector for cfg.
func NewConnector(cfg config.File, opts ...Option) *Connector {
	c := &Connector{
		cfg:    cfg,
		logger: defLogger{},
	}
	c.dial = c.dialSSH
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ServerPath is the application directory on the remote file system.
func (c *Connector) ServerPath() string {
	return path.Join(c.cfg.BasicExternalServerPath, c.cfg.AppExternalServerPath)
}

// AppServerPath is the public address of the application directory, used to
// build the locations of stored files.
func (c *Connector) AppServerPath() string {
	base := strings.TrimRight(c.cfg.SFTPServerURL, "/")
	if app := strings.Trim(c.cfg.AppExternalServerPath, "/"); app != "" {
		return base + "/" + app
	}
	return base
}

// Do runs fn inside a fresh session. The application directory is created
// the first time a session is opened.
func (c *Connector) Do(ctx context.Context, fn func(Client) error) error {
	if !c.cfg.SSH.Active {
		return ErrSSHInactive.Clone()
	}
	if err := ctx.Err(); err != nil {
		return c.fail("connect", err)
	}

	client, closer, err := c.dial(ctx)
	if err != nil {
		return c.fail("connect", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			c.logger.Debug("closing sftp client: %v", err)
		}
		if closer != nil {
			if err := closer.Close(); err != nil {
				c.logger.Debug("closing ssh connection: %v", err)
			}
		}
	}()

	if !c.prepared.Load() {
		if err := client.MkdirAll(c.ServerPath()); err != nil {
			return c.fail("prepare", err)
		}
		c.prepared.Store(true)
	}

	if err := fn(client); err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return err
		}
		return c.fail("execute", err)
	}
	return nil
}

// WriteFile stores data as name inside dir, a path relative to
// ServerPath. Missing directories are created.
func (c *Connector) WriteFile(ctx context.Context, dir, name string, data []byte) error {
	return c.Do(ctx, func(client Client) error {
		target := path.Join(c.ServerPath(), dir)
		if err := client.MkdirAll(target); err != nil {
			return err
		}

		f, err := client.Create(path.Join(target, name))
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// RemoveByPrefix deletes the files in dir whose names start with prefix.
// A missing dir is not an error.
func (c *Connector) RemoveByPrefix(ctx context.Context, dir, prefix string) error {
	return c.Do(ctx, func(client Client) error {
		target := path.Join(c.ServerPath(), dir)
		entries, err := client.ReadDir(target)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
				continue
			}
			if err := client.Remove(path.Join(target, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveDir deletes dir and everything below it. A missing dir is not an
// error.
func (c *Connector) RemoveDir(ctx context.Context, dir string) error {
	return c.Do(ctx, func(client Client) error {
		err := removeTree(client, path.Join(c.ServerPath(), dir))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}

// CreateDirIfNotExist creates parent/dir unless it already exists.
func CreateDirIfNotExist(client Client, parent, dir string) error {
	target := path.Join(parent, dir)
	info, err := client.Stat(target)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return errors.New("remote path exists and is not a directory", errors.CategoryConflict).
			WithMetadata(map[string]any{"path": target})
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return client.Mkdir(target)
}

func removeTree(client Client, target string) error {
	entries, err := client.ReadDir(target)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := path.Join(target, entry.Name())
		if entry.IsDir() {
			if err := removeTree(client, child); err != nil {
				return err
			}
			continue
		}
		if err := client.Remove(child); err != nil {
			return err
		}
	}
	return client.RemoveDirectory(target)
}

func (c *Connector) fail(op string, err error) error {
	c.logger.Error("sftp %s on %s failed: %v", op, c.cfg.SSH.SocketHost, err)
	return ErrUnableToPerformSftpAction.Clone().
		WithMetadata(map[string]any{
			"operation": op,
			"host":      c.cfg.SSH.SocketHost,
			"cause":     err.Error(),
		})
}

func (c *Connector) keyPath(name string) string {
	if c.keysDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.keysDir, name)
}

func (c *Connector) dialSSH(ctx context.Context) (*sftp.Client, io.Closer, error) {
	hostKeys, err := knownhosts.New(c.keyPath(c.cfg.SSH.KnownHostsFileName))
	if err != nil {
		return nil, nil, err
	}

	key, err := os.ReadFile(c.keyPath(c.cfg.SSH.UserPrivateKeyFileName))
	if err != nil {
		return nil, nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, nil, err
	}

	addr := c.cfg.SSH.SocketHost
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultSSHPort)
	}

	dialer := net.Dialer{Timeout: defaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            c.cfg.SSH.SocketLogin,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         defaultDialTimeout,
	})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, err
	}
	return client, sshClient, nil
}
