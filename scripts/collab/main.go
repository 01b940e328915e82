package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/codecollab/codecollab-server/client"
)

// lineEditor is a minimal in-memory document so the session has something
// to mirror the room's code into.
type lineEditor struct {
	mu     sync.Mutex
	text   string
	cursor client.Position
	onEdit func()
}

func (e *lineEditor) Contents() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *lineEditor) SetContents(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

func (e *lineEditor) Cursor() client.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

func (e *lineEditor) SetCursor(pos client.Position) {
	e.mu.Lock()
	e.cursor = pos
	e.mu.Unlock()
}

func (e *lineEditor) replace(text string) {
	e.mu.Lock()
	e.text = text
	notify := e.onEdit
	e.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func main() {
	if err := run(); err != nil {
		log.Printf("collab: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username for chat")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	editor := &lineEditor{}
	session, err := client.Dial(ctx, *addr, *room, editor, client.Options{
		User: *user,
		Handlers: client.Handlers{
			OnChat: func(msg client.ChatMessage) {
				fmt.Printf("[%s] %s: %s\n", *room, msg.User, msg.Text)
			},
			OnUserCount: func(n int) {
				fmt.Printf("[room %s] %d user(s) online\n", *room, n)
			},
			OnState: func(state client.State) {
				fmt.Printf("[session] %s\n", state)
			},
			OnServerError: func(code, msg string) {
				log.Printf("server error: %s: %s", code, msg)
			},
		},
	})
	if err != nil {
		return err
	}
	defer session.Close()
	editor.onEdit = session.HandleLocalChange

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type to chat. /code <text> replaces the document, /lang <id> switches language, /show prints the document. Ctrl+C to exit.")

	inputLoop(ctx, session, editor)

	return nil
}

func inputLoop(ctx context.Context, session *client.Session, editor *lineEditor) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			switch {
			case strings.HasPrefix(text, "/code "):
				editor.replace(strings.TrimPrefix(text, "/code "))
			case strings.HasPrefix(text, "/lang "):
				lang := strings.TrimSpace(strings.TrimPrefix(text, "/lang "))
				if err := session.SetLanguage(lang); err != nil {
					log.Printf("set language: %v", err)
				} else {
					fmt.Printf("[session] language is now %s\n", session.Language())
				}
			case text == "/show":
				fmt.Printf("--- %s ---\n%s\n---\n", session.Language(), editor.Contents())
			default:
				if err := session.SendChat(text); err != nil {
					if errors.Is(err, client.ErrMessageTooLong) {
						log.Printf("message too long, not sent")
						continue
					}
					log.Printf("send chat: %v", err)
					return
				}
			}
		}
	}
}
