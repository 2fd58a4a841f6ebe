package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/api"
	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
)

// Client is the server API the CLI drives.
type Client interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*api.User, error)
	Me(ctx context.Context) (*api.User, error)
	CreateTodo(ctx context.Context, title string) (*api.Todo, error)
	ListTodos(ctx context.Context) ([]*api.Todo, error)
	GetTodo(ctx context.Context, id string) (*api.Todo, error)
	UpdateTodo(ctx context.Context, id string, title *string, done *bool) (*api.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	UploadAttachment(ctx context.Context, id string, data []byte) error
	DownloadAttachment(ctx context.Context, id string) ([]byte, error)
	LoggedIn() bool
	Logout()
	Close() error
}

// downloadsDir is where fetched attachments are saved, relative to the
// working directory.
const downloadsDir = "downloads"

type App struct {
	client   Client
	timeout  time.Duration
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerAddr)
	if err != nil {
		return nil, err
	}
	return newApp(apiClient, c.RequestTimeout, os.Stdin, os.Stdout), nil
}

func newApp(c Client, timeout time.Duration, in io.Reader, out io.Writer) *App {
	return &App{client: c, timeout: timeout, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	printlnFn("Welcome to taskkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// call bounds one server round trip by the configured timeout.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}
