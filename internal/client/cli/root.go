package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to PolicyKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("pkeeper %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		if err := a.dispatch(ctx, cmd, args); err != nil {
			if err == errQuit {
				return
			}
			log.Printf("%s", err.Error())
		}
	}
}

var errQuit = fmt.Errorf("quit")

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Println("Available commands: add, get <id>, types, ping, logout, exit")
		} else {
			fmt.Println("Available commands: register, login, types, ping, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "add":
		if !a.isLoggedIn() {
			fmt.Println("Please log in first")
			return nil
		}
		return a.addRecord(ctx)
	case "get":
		if !a.isLoggedIn() {
			fmt.Println("Please log in first")
			return nil
		}
		if len(args) == 0 {
			fmt.Println("Usage: get <id>")
			return nil
		}
		return a.getRecord(ctx, args[0])
	case "types":
		return a.listTypes(ctx)
	case "ping":
		a.ping(ctx)
		return nil
	case "exit", "quit":
		fmt.Println("Bye!")
		return errQuit
	default:
		fmt.Println("Unknown command:", cmd)
		return nil
	}
}
