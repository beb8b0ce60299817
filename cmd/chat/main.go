package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/PavaniTiago/jurista-ai-frontend/config"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/chat"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/client"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/history"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/query"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/registry"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/session"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/utils/validator"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/kv"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// colorNotifier renders registry outcomes on the terminal.
type colorNotifier struct{}

func (colorNotifier) Success(message string) {
	color.Green("✔ %s", message)
}

func (colorNotifier) Error(message string) {
	color.Red("✘ %s", message)
}

type app struct {
	cfg      *config.AppConfig
	store    kv.Store
	sessions *session.Client
	api      *client.Client
	registry *registry.Registry
	logger   logger.Logger

	current *chat.Session
}

func main() {
	cfg := config.GetAppConfig()

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.LogLevel),
		logger.WithEncoding(cfg.LogEncoding),
		logger.WithOutputPaths([]string{cfg.LogPath}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := kv.NewStore(kv.StoreType(cfg.StoreType), kv.Config{
		Dir:       cfg.StateDir,
		RedisAddr: cfg.RedisAddr,
		RedisDB:   cfg.RedisDB,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize state store", logger.Error(err))
	}

	authCfg := config.GetAuthConfig()
	sessions := session.NewClient(session.Config{
		AuthURL: authCfg.AuthURL,
		AnonKey: authCfg.AnonKey,
	}, store, log)

	api := client.New(cfg.APIBaseURL, sessions, log)

	a := &app{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		api:      api,
		registry: registry.NewRegistry(api, log,
			registry.WithNotifier(colorNotifier{}),
			registry.WithValidator(validator.NewUploadValidator(log, nil)),
			registry.WithHistoryPurger(history.NewPurger(store)),
		),
		logger: log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil && ctx.Err() == nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context) error {
	if err := a.ensureSignedIn(ctx); err != nil {
		return err
	}

	// Health and document list are independent; fetch them together.
	var health *models.HealthResponse
	var docs *models.DocumentListResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = a.api.CheckHealth(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = a.registry.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	color.Cyan("Jurista AI: connected (%s, %s)", health.Status, health.Environment)
	a.printDocuments(docs.Documents)
	fmt.Println(`Type a question, or \help for commands.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		a.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, `\`) {
			quit, err := a.command(ctx, line)
			if err != nil {
				color.Red("%v", err)
			}
			if quit {
				return nil
			}
			continue
		}

		a.ask(ctx, line)
	}
}

func (a *app) prompt() {
	if a.current != nil {
		fmt.Printf("[%s] > ", a.current.Document().Filename)
	} else {
		fmt.Print("> ")
	}
}

// ensureSignedIn restores the persisted session or signs in from env
// credentials.
func (a *app) ensureSignedIn(ctx context.Context) error {
	if _, err := a.sessions.CurrentSession(ctx); err == nil {
		return nil
	}

	email := os.Getenv("JURISTA_EMAIL")
	password := os.Getenv("JURISTA_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("no session: set JURISTA_EMAIL and JURISTA_PASSWORD to sign in")
	}

	if _, err := a.sessions.SignIn(ctx, email, password); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// command dispatches a backslash command; returns true to quit.
func (a *app) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case `\help`:
		fmt.Println(`\docs                list documents
\use <id>            open a document's conversation
\upload <path>       upload a PDF
\delete <id>         delete a document (and its chat history)
\wait <id>           wait for processing to finish
\clear               clear the current conversation
\history             reprint the current conversation
\health              check the service
\signout             sign out
\quit                exit`)
		return false, nil

	case `\docs`:
		docs, err := a.registry.List(ctx)
		if err != nil {
			return false, err
		}
		a.printDocuments(docs.Documents)
		return false, nil

	case `\use`:
		if len(args) != 1 {
			return false, fmt.Errorf(`usage: \use <document-id>`)
		}
		return false, a.open(ctx, args[0])

	case `\upload`:
		if len(args) != 1 {
			return false, fmt.Errorf(`usage: \upload <path>`)
		}
		resp, err := a.registry.Upload(ctx, args[0])
		if err != nil {
			return false, nil // notifier already reported it
		}
		fmt.Printf("document id: %s (%d chunks)\n", resp.DocumentID, resp.ChunksCount)
		return false, nil

	case `\delete`:
		if len(args) != 1 {
			return false, fmt.Errorf(`usage: \delete <document-id>`)
		}
		if a.current != nil && a.current.Document().ID == args[0] {
			a.current = nil
		}
		_ = a.registry.Delete(ctx, args[0]) // notifier reports the outcome
		return false, nil

	case `\wait`:
		if len(args) != 1 {
			return false, fmt.Errorf(`usage: \wait <document-id>`)
		}
		doc, err := a.registry.WaitForCompletion(ctx, args[0], 2*time.Second)
		if err != nil {
			return false, err
		}
		fmt.Printf("%s is %s\n", doc.Filename, doc.Status)
		return false, nil

	case `\clear`:
		if a.current == nil {
			return false, fmt.Errorf("no document open")
		}
		if err := a.current.Clear(ctx); err != nil {
			return false, err
		}
		fmt.Println("conversation cleared")
		return false, nil

	case `\history`:
		if a.current == nil {
			return false, fmt.Errorf("no document open")
		}
		for _, msg := range a.current.Messages() {
			a.printMessage(msg)
		}
		return false, nil

	case `\health`:
		health, err := a.api.CheckHealth(ctx)
		if err != nil {
			return false, err
		}
		fmt.Printf("%s (%s) at %s\n", health.Status, health.Environment, health.Timestamp)
		return false, nil

	case `\signout`:
		a.current = nil
		return false, a.sessions.SignOut(ctx)

	case `\quit`, `\q`:
		return true, nil

	default:
		return false, fmt.Errorf(`unknown command %s, try \help`, cmd)
	}
}

// open loads the document and rebuilds its conversation from storage.
func (a *app) open(ctx context.Context, documentID string) error {
	doc, err := a.registry.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if !doc.Status.Queryable() {
		return fmt.Errorf("%s is not ready for questions (status %s)", doc.Filename, doc.Status)
	}

	controller := query.NewController(a.api, doc.ID, a.logger)
	hist := history.NewStore(ctx, doc.ID, a.store, a.logger)
	a.current = chat.NewSession(*doc, controller, hist, a.logger)

	color.Cyan("%s (%d earlier messages)", doc.Filename, hist.Len())
	return nil
}

func (a *app) ask(ctx context.Context, question string) {
	if a.current == nil {
		color.Yellow(`open a document first: \docs then \use <id>`)
		return
	}

	answer, err := a.current.Ask(ctx, question)
	if err != nil {
		color.Red("%v", err)
		return
	}
	a.printMessage(*answer)
}

func (a *app) printMessage(msg models.ChatMessage) {
	switch msg.Role {
	case models.RoleUser:
		color.New(color.Bold).Printf("you: %s\n", msg.Content)
	case models.RoleAssistant:
		fmt.Println(msg.Content)
		for _, src := range msg.Sources {
			location := fmt.Sprintf("chunk %d", src.ChunkIndex)
			if src.Metadata.PageNumber != nil {
				location = fmt.Sprintf("page %d", *src.Metadata.PageNumber)
			}
			color.New(color.Faint).Printf("  [%s, %.0f%%] %s\n", location, src.Similarity*100, excerpt(src.Content))
		}
	}
}

func (a *app) printDocuments(docs []models.Document) {
	if len(docs) == 0 {
		fmt.Println("no documents yet, upload one with \\upload <path>")
		return
	}
	for _, doc := range docs {
		statusColor := color.New(color.FgYellow)
		if doc.Status == models.StatusCompleted {
			statusColor = color.New(color.FgGreen)
		} else if doc.Status == models.StatusFailed {
			statusColor = color.New(color.FgRed)
		}
		fmt.Printf("  %s  %s  ", doc.ID, doc.Filename)
		statusColor.Println(string(doc.Status))
	}
}

func excerpt(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) > 120 {
		return content[:120] + "…"
	}
	return content
}
