package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/denmor86/ya-minerpool/internal/logger"
	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/denmor86/ya-minerpool/internal/session"
)

//go:generate mockgen -source=commands.go -destination=mocks/mock_commands.go -package=mocks

var ErrUnknownCommand = errors.New("unknown command, type help")

const help = `Commands:
  register <username> <password>
  login <username> <password>
  logout
  start | stop          join or leave mining
  share                 submit one share
  auto | autostop       periodic shares
  chat <text>
  payout <amount>
  me | status
  quit`

// Controller - действия пользователя, доступные из консоли
type Controller interface {
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	RefreshIdentity(ctx context.Context) error
	Join(ctx context.Context) error
	Leave(ctx context.Context) error
	SubmitShare(ctx context.Context) error
	StartAutoMine() error
	StopAutoMine()
	SendChat(ctx context.Context, message string) error
	RequestPayout(ctx context.Context, rawAmount string) (models.Payouts, error)
	Snapshot() session.Status
}

// Run - чтение команд до quit, конца ввода или отмены контекста
func Run(ctx context.Context, in io.Reader, console *Console, controller Controller) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	console.Notice(help)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := Execute(ctx, line, console, controller)
			if err != nil {
				console.Alert(err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute - выполнение одной команды. Возвращает true для quit
func Execute(ctx context.Context, line string, console *Console, controller Controller) (bool, error) {
	command, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)
	logger.Debug("console command", "command", command)

	switch strings.ToLower(command) {
	case "":
		return false, nil
	case "help":
		console.Notice(help)
		return false, nil
	case "quit", "exit":
		return true, nil
	case "register":
		creds, err := parseCredentials(args)
		if err != nil {
			return false, err
		}
		return false, controller.Register(ctx, creds)
	case "login":
		creds, err := parseCredentials(args)
		if err != nil {
			return false, err
		}
		return false, controller.Login(ctx, creds)
	case "logout":
		return false, controller.Logout(ctx)
	case "me":
		return false, controller.RefreshIdentity(ctx)
	case "start":
		return false, controller.Join(ctx)
	case "stop":
		return false, controller.Leave(ctx)
	case "share":
		return false, controller.SubmitShare(ctx)
	case "auto":
		return false, controller.StartAutoMine()
	case "autostop":
		controller.StopAutoMine()
		return false, nil
	case "chat":
		return false, controller.SendChat(ctx, args)
	case "payout":
		// результат выводит сам контроллер через View
		_, _ = controller.RequestPayout(ctx, args)
		return false, nil
	case "status":
		console.Status(controller.Snapshot())
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
}

func parseCredentials(args string) (models.Credentials, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return models.Credentials{}, errors.New("usage: <username> <password>")
	}
	return models.Credentials{Username: fields[0], Password: fields[1]}, nil
}
