package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
)

// authClient is the part of client.GRPCClient the CLI drives.
type authClient interface {
	Register(ctx context.Context, userName, password, name string) (*client.Profile, error)
	Login(ctx context.Context, userName, password string) (*client.Profile, string, error)
	WhoAmI(ctx context.Context) (*client.Identity, error)
	Logout()
	Close() error
}

type App struct {
	config   *config.Config
	client   authClient
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run starts the REPL on stdin and closes the connection when it ends.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	printlnFn("Welcome to shopkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
