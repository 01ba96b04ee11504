package sftp_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"sort"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/goliatone/go-security/file/sftp"
	"github.com/goliatone/go-security/i18n"
	pkgsftp "github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// memoryServer serves every session from the same in-memory tree.
type memoryServer struct {
	handlers pkgsftp.Handlers
	dials    int
}

func newMemoryServer() *memoryServer {
	return &memoryServer{handlers: pkgsftp.InMemHandler()}
}

func (m *memoryServer) dial(ctx context.Context) (*pkgsftp.Client, io.Closer, error) {
	m.dials++

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, err
	}
	defer listener.Close()

	accepted := make(chan *pkgsftp.RequestServer, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(accepted)
			return
		}
		server := pkgsftp.NewRequestServer(conn, m.handlers)
		accepted <- server
		_ = server.Serve()
	}()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", listener.Addr().String())
	if err != nil {
		return nil, nil, err
	}
	server, ok := <-accepted
	if !ok {
		conn.Close()
		return nil, nil, io.ErrClosedPipe
	}

	client, err := pkgsftp.NewClientPipe(conn, conn)
	if err != nil {
		server.Close()
		return nil, nil, err
	}
	return client, server, nil
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == code
}

func fileConfig(active bool) config.File {
	return config.File{
		SSH: config.SSH{
			Active:      active,
			SocketHost:  "files.example.com",
			SocketLogin: "jmpsl",
		},
		SFTPServerURL:           "https://static.example.com/",
		BasicExternalServerPath: "/srv",
		AppExternalServerPath:   "app",
	}
}

func newConnector(t *testing.T) (*sftp.Connector, *memoryServer) {
	t.Helper()
	server := newMemoryServer()
	return sftp.NewConnector(fileConfig(true),
		sftp.WithDialer(server.dial),
		sftp.WithLogger(nopLogger{}),
	), server
}

func readFile(t *testing.T, c *sftp.Connector, name string) []byte {
	t.Helper()
	var data []byte
	err := c.Do(context.Background(), func(client sftp.Client) error {
		f, err := client.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		data, err = io.ReadAll(f)
		return err
	})
	require.NoError(t, err)
	return data
}

func listDir(t *testing.T, c *sftp.Connector, dir string) []string {
	t.Helper()
	var names []string
	err := c.Do(context.Background(), func(client sftp.Client) error {
		entries, err := client.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(names)
	return names
}

func TestServerPaths(t *testing.T) {
	c := sftp.NewConnector(fileConfig(true))
	assert.Equal(t, "/srv/app", c.ServerPath())
	assert.Equal(t, "https://static.example.com/app", c.AppServerPath())

	cfg := fileConfig(true)
	cfg.AppExternalServerPath = ""
	c = sftp.NewConnector(cfg)
	assert.Equal(t, "/srv", c.ServerPath())
	assert.Equal(t, "https://static.example.com", c.AppServerPath())
}

func TestDoInactive(t *testing.T) {
	server := newMemoryServer()
	c := sftp.NewConnector(fileConfig(false), sftp.WithDialer(server.dial))

	err := c.Do(context.Background(), func(sftp.Client) error { return nil })

	assert.True(t, hasTextCode(err, sftp.TextCodeSSHInactive))
	assert.Zero(t, server.dials)
}

func TestDoCreatesAppServerPath(t *testing.T) {
	c, server := newConnector(t)

	err := c.Do(context.Background(), func(client sftp.Client) error {
		info, err := client.Stat("/srv/app")
		if err != nil {
			return err
		}
		assert.True(t, info.IsDir())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, server.dials)
}

func TestDoWrapsFailures(t *testing.T) {
	c := sftp.NewConnector(fileConfig(true),
		sftp.WithLogger(nopLogger{}),
		sftp.WithDialer(func(context.Context) (*pkgsftp.Client, io.Closer, error) {
			return nil, nil, assert.AnError
		}),
	)

	err := c.Do(context.Background(), func(sftp.Client) error { return nil })

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, i18n.KeyUnableToPerformSftp, richErr.TextCode)
	assert.Equal(t, http.StatusServiceUnavailable, richErr.Code)
	assert.Equal(t, "connect", richErr.Metadata["operation"])
	assert.Equal(t, "files.example.com", richErr.Metadata["host"])
}

func TestDoCallbackErrors(t *testing.T) {
	c, _ := newConnector(t)

	err := c.Do(context.Background(), func(sftp.Client) error { return assert.AnError })
	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, i18n.KeyUnableToPerformSftp, richErr.TextCode)
	assert.Equal(t, "execute", richErr.Metadata["operation"])

	conflict := errors.New("already there", errors.CategoryConflict)
	err = c.Do(context.Background(), func(sftp.Client) error { return conflict })
	assert.Same(t, conflict, err)
}

func TestDoCanceledContext(t *testing.T) {
	c, server := newConnector(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, func(sftp.Client) error { return nil })

	assert.True(t, hasTextCode(err, i18n.KeyUnableToPerformSftp))
	assert.Zero(t, server.dials)
}

func TestWriteFile(t *testing.T) {
	c, _ := newConnector(t)
	ctx := context.Background()

	require.NoError(t, c.WriteFile(ctx, "users/user1_abc", "avatar_1.png", []byte("first")))
	require.NoError(t, c.WriteFile(ctx, "users/user1_abc", "avatar_1.png", []byte("second")))

	assert.Equal(t, []byte("second"), readFile(t, c, "/srv/app/users/user1_abc/avatar_1.png"))
}

func TestRemoveByPrefix(t *testing.T) {
	c, _ := newConnector(t)
	ctx := context.Background()

	require.NoError(t, c.WriteFile(ctx, "user1", "avatar_1.png", []byte("a")))
	require.NoError(t, c.WriteFile(ctx, "user1", "avatar_2.png", []byte("b")))
	require.NoError(t, c.WriteFile(ctx, "user1", "banner_1.png", []byte("c")))

	require.NoError(t, c.RemoveByPrefix(ctx, "user1", "avatar"))
	assert.Equal(t, []string{"banner_1.png"}, listDir(t, c, "/srv/app/user1"))

	assert.NoError(t, c.RemoveByPrefix(ctx, "missing", "avatar"))
}

func TestRemoveDir(t *testing.T) {
	c, _ := newConnector(t)
	ctx := context.Background()

	require.NoError(t, c.WriteFile(ctx, "user1/nested", "a.png", []byte("a")))
	require.NoError(t, c.WriteFile(ctx, "user1", "b.png", []byte("b")))
	require.NoError(t, c.WriteFile(ctx, "user2", "c.png", []byte("c")))

	require.NoError(t, c.RemoveDir(ctx, "user1"))
	assert.Equal(t, []string{"user2"}, listDir(t, c, "/srv/app"))

	assert.NoError(t, c.RemoveDir(ctx, "user1"))
}

func TestCreateDirIfNotExist(t *testing.T) {
	c, _ := newConnector(t)

	err := c.Do(context.Background(), func(client sftp.Client) error {
		if err := sftp.CreateDirIfNotExist(client, "/srv/app", "avatars"); err != nil {
			return err
		}
		return sftp.CreateDirIfNotExist(client, "/srv/app", "avatars")
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"avatars"}, listDir(t, c, "/srv/app"))
}
